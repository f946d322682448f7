package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
)

// ErrWorkflowNotFound is returned for an unknown workflow id.
var ErrWorkflowNotFound = errors.New("workflow not found")

// workflowSource exposes the dispatcher's live workflow set.
type workflowSource interface {
	Workflows() []*domain.Workflow
}

type workflowService struct {
	source workflowSource
}

func NewWorkflowService(source workflowSource) WorkflowService {
	return &workflowService{source: source}
}

func (s *workflowService) List(ctx context.Context) []*domain.Workflow {
	return s.source.Workflows()
}

func (s *workflowService) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	for _, w := range s.source.Workflows() {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("workflow %s: %w", id, ErrWorkflowNotFound)
}

// SetEnabled toggles a workflow. System workflows can be disabled but
// never removed, so this is the only mutation the set supports.
func (s *workflowService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	w.SetEnabled(enabled)
	return nil
}
