package memory

import (
	"context"
	"sort"
	"sync"

	"tulu-service/internal/domain"
)

// HistoryStore keeps tutor exchanges in memory, per session.
type HistoryStore struct {
	mu        sync.RWMutex
	exchanges map[string][]domain.ChatExchange
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{exchanges: make(map[string][]domain.ChatExchange)}
}

func (s *HistoryStore) Append(_ context.Context, exchange domain.ChatExchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.exchanges[exchange.SessionID], exchange)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	s.exchanges[exchange.SessionID] = list
	return nil
}

func (s *HistoryStore) Recent(_ context.Context, sessionID string, limit int) ([]domain.ChatExchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.exchanges[sessionID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]domain.ChatExchange, len(list))
	copy(out, list)
	return out, nil
}
