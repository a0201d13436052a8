package clock

import (
	"sync"
	"time"
)

// Clock abstracts time operations for testing
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// NewTicker creates a new ticker that will send on its channel every d duration
	NewTicker(d time.Duration) *time.Ticker
}

// RealClock implements Clock using the system time
type RealClock struct {
	// Location, when set, pins Now() to a timezone
	Location *time.Location
}

// Now returns the current time
func (c RealClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// NewTicker creates a new time.Ticker
func (RealClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockClock implements Clock for testing. Safe for concurrent use.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMock returns a MockClock frozen at t
func NewMock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mocked current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// NewTicker creates a real ticker; mocked time does not drive it
func (m *MockClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// Advance moves the mocked time forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
}

// Set sets the mocked current time to a specific value
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Ensure implementations satisfy the interface
var (
	_ Clock = RealClock{}
	_ Clock = (*MockClock)(nil)
)
