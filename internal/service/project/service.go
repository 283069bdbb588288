package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/project"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Invalidator drops derived data that depends on projects.
type Invalidator interface {
	Invalidate()
}

type ProjectServiceImpl struct {
	projectRepo      project.ProjectRepository
	defaultBonusRate decimal.Decimal
	cache            Invalidator
	logger           *slog.Logger
}

func NewProjectService(
	projectRepo project.ProjectRepository,
	defaultBonusRate decimal.Decimal,
	cache Invalidator,
	logger *slog.Logger,
) project.ProjectService {
	return &ProjectServiceImpl{
		projectRepo:      projectRepo,
		defaultBonusRate: defaultBonusRate,
		cache:            cache,
		logger:           logger.With("component", "project"),
	}
}

func (s *ProjectServiceImpl) List(ctx context.Context, filter project.ListFilter) ([]project.ProjectResponse, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validator.ValidationErrors{{Field: "status", Message: "must be one of active, paused, completed"}}
	}

	summaries, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]project.ProjectResponse, 0, len(summaries))
	for _, sum := range summaries {
		responses = append(responses, project.NewProjectResponse(sum))
	}
	return responses, nil
}

func (s *ProjectServiceImpl) Get(ctx context.Context, id int64) (project.ProjectResponse, error) {
	sum, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	return project.NewProjectResponse(sum), nil
}

func (s *ProjectServiceImpl) Create(ctx context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	p := project.Project{
		ProjectID:        req.ProjectID,
		Name:             strings.TrimSpace(req.Name),
		Client:           strings.TrimSpace(req.Client),
		DealValue:        req.DealValue,
		BudgetHours:      req.BudgetHours,
		HourlyRate:       req.HourlyRate,
		OnsiteHourlyRate: req.OnsiteHourlyRate,
		BonusRate:        s.defaultBonusRate,
		Status:           project.StatusActive,
		ProjectManager:   req.ProjectManager,
		CustomerContact:  req.CustomerContact,
	}
	if req.BonusRate != nil {
		p.BonusRate = *req.BonusRate
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	if req.StartDate != nil {
		d, _ := validator.IsValidDate(*req.StartDate)
		p.StartDate = &d
	}

	created, err := s.projectRepo.Create(ctx, p)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	s.logger.Info("project created", "id", created.ID, "project_id", created.ProjectID)
	s.cache.Invalidate()
	return project.NewProjectResponse(project.Summary{Project: created}), nil
}

func (s *ProjectServiceImpl) Update(ctx context.Context, req project.UpdateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	current, err := s.projectRepo.GetByID(ctx, req.ID)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	p := current.Project
	req.Apply(&p)

	updated, err := s.projectRepo.Update(ctx, p)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	s.cache.Invalidate()
	return project.NewProjectResponse(project.Summary{Project: updated, Hours: current.Hours}), nil
}

func (s *ProjectServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "id", id)
	s.cache.Invalidate()
	return nil
}

func (s *ProjectServiceImpl) BulkUpdateStatus(ctx context.Context, req project.BulkStatusRequest) (project.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return project.BulkResult{}, err
	}

	n, err := s.projectRepo.UpdateStatus(ctx, req.IDs, req.Status)
	if err != nil {
		return project.BulkResult{}, fmt.Errorf("bulk status update: %w", err)
	}

	s.cache.Invalidate()
	return project.BulkResult{Affected: n}, nil
}

func (s *ProjectServiceImpl) BulkDelete(ctx context.Context, req project.BulkDeleteRequest) (project.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return project.BulkResult{}, err
	}

	n, err := s.projectRepo.DeleteMany(ctx, req.IDs)
	if err != nil {
		return project.BulkResult{}, fmt.Errorf("bulk delete: %w", err)
	}

	s.logger.Info("projects deleted", "requested", len(req.IDs), "deleted", n)
	s.cache.Invalidate()
	return project.BulkResult{Affected: n}, nil
}
