package tui

import (
	"context"
	"errors"
)

// ShutdownManager coordinates an orderly exit of evman's components.
type ShutdownManager struct {
	// CancelRequests cancels the context requests run under, so a hung
	// server cannot hold the process open.
	CancelRequests context.CancelFunc

	// CloseCache closes the credential cache.
	CloseCache func() error

	// Cleanup performs any additional cleanup (e.g., closing the request log).
	Cleanup func() error
}

func NewShutdownManager() *ShutdownManager {
	return &ShutdownManager{}
}

// Shutdown performs the steps in order:
// 1. Cancel in-flight requests
// 2. Close the credential cache
// 3. Run cleanup
//
// Every step runs even if an earlier one fails; the errors are joined.
func (sm *ShutdownManager) Shutdown() error {
	if sm.CancelRequests != nil {
		sm.CancelRequests()
	}

	var errs []error
	if sm.CloseCache != nil {
		if err := sm.CloseCache(); err != nil {
			errs = append(errs, err)
		}
	}
	if sm.Cleanup != nil {
		if err := sm.Cleanup(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
