package project

import "context"

type ProjectService interface {
	List(ctx context.Context, filter ListFilter) ([]ProjectResponse, error)
	Get(ctx context.Context, id int64) (ProjectResponse, error)
	Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	Update(ctx context.Context, req UpdateProjectRequest) (ProjectResponse, error)
	Delete(ctx context.Context, id int64) error
	BulkUpdateStatus(ctx context.Context, req BulkStatusRequest) (BulkResult, error)
	BulkDelete(ctx context.Context, req BulkDeleteRequest) (BulkResult, error)
}
