package project

import "context"

type ProjectRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Summary, error)
	GetByID(ctx context.Context, id int64) (Summary, error)
	Create(ctx context.Context, p Project) (Project, error)
	Update(ctx context.Context, p Project) (Project, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, ids []int64, status Status) (int64, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}
