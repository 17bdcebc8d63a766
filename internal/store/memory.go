package store

import (
	"context"
	"sync"

	"github.com/jonathan/interview-coach/internal/types"
)

// Memory keeps sessions in process memory. Records are copied on the way in and out.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*types.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*types.Session)}
}

func (m *Memory) EnsureSchema(context.Context) error { return nil }

func (m *Memory) Put(_ context.Context, s *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *Memory) Update(_ context.Context, id string, patch types.SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(s)
	return nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
