package transcribe

import (
	"context"
	"fmt"
	"sync"
)

// MockService completes every job with a fixed transcript after PendingPolls status checks.
type MockService struct {
	Transcript   string
	PendingPolls int
	FailJobs     bool

	mu      sync.Mutex
	next    int
	polls   map[string]int
	Deleted []string
}

// NewMockService returns a service that completes on the first status check.
func NewMockService(transcript string) *MockService {
	return &MockService{Transcript: transcript}
}

func (m *MockService) Start(_ context.Context, _ Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	if m.polls == nil {
		m.polls = make(map[string]int)
	}
	id := fmt.Sprintf("mock-job-%d", m.next)
	m.polls[id] = 0
	return id, nil
}

func (m *MockService) Status(_ context.Context, jobID string) (RemoteStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.polls[jobID]
	if !ok {
		return RemotePending, fmt.Errorf("unknown job %s", jobID)
	}
	m.polls[jobID] = n + 1
	if n < m.PendingPolls {
		return RemotePending, nil
	}
	if m.FailJobs {
		return RemoteFailed, nil
	}
	return RemoteReady, nil
}

func (m *MockService) Fetch(_ context.Context, _ string, _ string) (string, error) {
	return m.Transcript, nil
}

func (m *MockService) Delete(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.polls, jobID)
	m.Deleted = append(m.Deleted, jobID)
	return nil
}
