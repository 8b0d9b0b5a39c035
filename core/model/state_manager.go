// Package model provides the classifier contract, exported weights and
// their on-disk formats.
package model

import (
	"sync"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// StateManager tracks whether a model has weights, in a thread-safe manner.
type StateManager struct {
	Fitted    bool // Public for gob encoding
	NFeatures int
	mu        sync.RWMutex
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether weights have been imported.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as ready to predict with nFeatures inputs.
func (s *StateManager) SetFitted(nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
	s.NFeatures = nFeatures
}

// Reset drops the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
}

// NumFeatures returns the number of features the weights expect.
func (s *StateManager) NumFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures
}

// RequireFitted returns a NotFittedError naming modelName and method
// when no weights are loaded.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
