package app

import (
	"context"
	"strings"

	"tulu-service/internal/domain"
	"tulu-service/internal/transcript"
)

// ContentStore is the read side of the learning material: series, scenes and
// the word dictionary.
type ContentStore interface {
	ListSeries(ctx context.Context) ([]domain.Series, error)
	ListScenes(ctx context.Context) ([]domain.Scene, error)
	GetScene(ctx context.Context, sceneID string) (domain.Scene, error)
	// LookupWord takes a normalized key and returns domain.ErrWordNotFound on a miss.
	LookupWord(ctx context.Context, key string) (domain.WordEntry, error)
}

// CatalogService serves series and scenes.
type CatalogService struct {
	store ContentStore
}

func NewCatalogService(store ContentStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListSeries(ctx context.Context) ([]domain.Series, error) {
	return s.store.ListSeries(ctx)
}

// ListScenes returns every scene; the first one is the default selection.
func (s *CatalogService) ListScenes(ctx context.Context) ([]domain.Scene, error) {
	return s.store.ListScenes(ctx)
}

func (s *CatalogService) GetScene(ctx context.Context, sceneID string) (domain.Scene, error) {
	if strings.TrimSpace(sceneID) == "" {
		return domain.Scene{}, domain.ErrSceneNotFound
	}
	return s.store.GetScene(ctx, sceneID)
}

// LexiconService answers word lookups for clicked transcript tokens.
type LexiconService struct {
	store ContentStore
}

func NewLexiconService(store ContentStore) *LexiconService {
	return &LexiconService{store: store}
}

// LookupWord normalizes the raw token and looks it up. The returned entry
// echoes the token as it was asked for.
func (s *LexiconService) LookupWord(ctx context.Context, token string) (domain.WordEntry, error) {
	key := transcript.Normalize(token)
	if key == "" {
		return domain.WordEntry{}, domain.ErrWordNotFound
	}
	entry, err := s.store.LookupWord(ctx, key)
	if err != nil {
		return domain.WordEntry{}, err
	}
	entry.Word = token
	return entry, nil
}
