// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// cancelManager holds the cancel function for the in-flight request.
// Bubble Tea copies the model on every update, so the manager must live
// behind a pointer; copying the mutex by value would corrupt it.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores the cancel function for the current request, replacing any
// previous one.
func (cm *cancelManager) set(cancel context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = cancel
}

// cancel aborts the in-flight request, if any. Returns true when a
// request was actually cancelled.
func (cm *cancelManager) cancel() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc == nil {
		return false
	}
	cm.cancelFunc()
	cm.cancelFunc = nil
	return true
}

// clear drops the cancel function without invoking it, called when a
// request completes normally.
func (cm *cancelManager) clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = nil
}
