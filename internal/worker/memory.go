package worker

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

// MemoryHints keeps preview hints in process memory. It backs the pool when
// no database is configured.
type MemoryHints struct {
	mu    sync.RWMutex
	hints map[string]domain.PreviewHint
}

var _ ports.PreviewHintRepository = (*MemoryHints)(nil)

func NewMemoryHints() *MemoryHints {
	return &MemoryHints{hints: make(map[string]domain.PreviewHint)}
}

func (m *MemoryHints) GetPreviewHint(_ context.Context, url string) (domain.PreviewHint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hint, ok := m.hints[url]
	if !ok {
		return domain.PreviewHint{}, ports.ErrHintNotFound
	}
	return hint, nil
}

func (m *MemoryHints) SavePreviewHint(_ context.Context, hint domain.PreviewHint) error {
	m.mu.Lock()
	m.hints[hint.URL] = hint
	m.mu.Unlock()
	return nil
}
