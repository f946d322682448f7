package service

import (
	"context"
	"testing"

	"github.com/avelara/beacon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticWorkflows []*domain.Workflow

func (s staticWorkflows) Workflows() []*domain.Workflow { return s }

func TestWorkflowService_GetAndToggle(t *testing.T) {
	set := staticWorkflows{
		{ID: "w1", Name: "Overdue sweep", Enabled: true, System: true},
		{ID: "w2", Name: "Custom escalation", Enabled: true},
	}
	svc := NewWorkflowService(set)
	ctx := context.Background()

	assert.Len(t, svc.List(ctx), 2)

	w, err := svc.Get(ctx, "w2")
	require.NoError(t, err)
	assert.Equal(t, "Custom escalation", w.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	require.NoError(t, svc.SetEnabled(ctx, "w1", false))
	w, err = svc.Get(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, w.IsEnabled())

	require.NoError(t, svc.SetEnabled(ctx, "w1", true))
	assert.True(t, w.IsEnabled())
}
