package repository

import (
	"sync"

	"github.com/noah-isme/edu-workflow-api/internal/models"
)

// WorkflowStore is the process-wide container for templates, instances and
// the session user. Safe for concurrent access.
type WorkflowStore struct {
	mu    sync.RWMutex
	state models.WorkflowState
}

// WorkflowStoreOption seeds the store at construction.
type WorkflowStoreOption func(*WorkflowStore)

// WithTemplates preloads templates in the given order.
func WithTemplates(templates ...models.WorkflowTemplate) WorkflowStoreOption {
	return func(s *WorkflowStore) {
		for _, t := range templates {
			s.state.Templates = append(s.state.Templates, t.Clone())
		}
	}
}

// NewWorkflowStore returns an empty store with the provided seed applied.
func NewWorkflowStore(opts ...WorkflowStoreOption) *WorkflowStore {
	s := &WorkflowStore{state: models.WorkflowState{
		Templates: []models.WorkflowTemplate{},
		Instances: []models.WorkflowInstance{},
	}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *WorkflowStore) Snapshot() models.WorkflowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update runs fn against a private copy of the state and installs the copy
// only when fn succeeds. A failing fn leaves the store untouched.
func (s *WorkflowStore) Update(fn func(state *models.WorkflowState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}
