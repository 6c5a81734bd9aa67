package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

// BatchSaver flushes several canvas scenes in one write, used at shutdown.
type BatchSaver interface {
	SaveMany(ctx context.Context, scenes map[string][]shape.Shape) error
}

// Manager tracks live sessions so shutdown can flush every open canvas.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	saver    BatchSaver
}

func NewManager(saver BatchSaver) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		saver:    saver,
	}
}

func (m *Manager) Register(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
}

func (m *Manager) unregister(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.id)
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown persists every live scene in one batched write, then closes the
// sessions. Later sessions for the same canvas win when several are open.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	scenes := make(map[string][]shape.Shape, len(m.sessions))
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		scenes[s.canvasID] = s.eng.Elements()
		open = append(open, s)
	}
	m.mu.Unlock()

	if m.saver != nil && len(scenes) > 0 {
		if err := m.saver.SaveMany(ctx, scenes); err != nil {
			slog.Error("flush sessions", "error", err)
		}
	}

	for _, s := range open {
		s.eng.Destroy()
	}
}
