package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/repo"
)

// ExportService assembles a flat export of one user's tasks.
type ExportService struct {
	tasks repo.TaskRepo
}

// NewExportService constructs an ExportService backed by the provided TaskRepo.
func NewExportService(tasks repo.TaskRepo) *ExportService {
	return &ExportService{tasks: tasks}
}

// Export returns one ExportRow per task owned by ownerID, newest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(tasks))
	for _, t := range tasks {
		names := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			names[i] = tag.Name
		}
		rows = append(rows, domain.ExportRow{
			TaskID:      t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			CreatedAt:   t.CreatedAt,
			Tags:        names,
		})
	}
	return rows, nil
}
