// Package testutil provides test utilities for progress tracking.
package testutil

import "sync"

// MockProgress records every increment reported to it.
type MockProgress struct {
	mu      sync.Mutex
	Total   int64
	Updates []int64
}

// Add records an increment.
func (m *MockProgress) Add(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Total += n
	m.Updates = append(m.Updates, n)
}

// Sum returns the total of all increments.
func (m *MockProgress) Sum() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Total
}
