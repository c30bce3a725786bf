// Package model provides shared state management for surveyreg estimators.
//
// Every estimator composes a StateManager rather than embedding a base
// struct, keeping fitted-state tracking thread-safe and uniform across the
// library:
//
//	type MyModel struct {
//	    state *model.StateManager
//	    // model-specific fields
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//	    // training logic
//	    m.state.SetFitted()
//	    return nil
//	}
package model

import (
	"sync"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// StateManager manages the fitted state of an estimator in a thread-safe
// manner.
type StateManager struct {
	Fitted bool // Public for gob encoding
	mu     sync.RWMutex

	// Optional metadata - Public for gob encoding
	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions records the number of features and samples seen during fitting.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError if the estimator has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return sgerrors.NewNotFittedError(modelName, method)
	}
	return nil
}
