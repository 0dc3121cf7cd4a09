package memory

import (
	"context"

	"tulu-service/internal/content"
	"tulu-service/internal/domain"
)

// ContentStore serves a content bundle from memory. It satisfies
// app.ContentStore and QuizLoader.
type ContentStore struct {
	bundle content.Bundle
}

func NewContentStore(bundle content.Bundle) *ContentStore {
	return &ContentStore{bundle: bundle}
}

func (s *ContentStore) ListSeries(context.Context) ([]domain.Series, error) {
	out := make([]domain.Series, len(s.bundle.Series))
	copy(out, s.bundle.Series)
	return out, nil
}

func (s *ContentStore) ListScenes(context.Context) ([]domain.Scene, error) {
	out := make([]domain.Scene, len(s.bundle.Scenes))
	copy(out, s.bundle.Scenes)
	return out, nil
}

func (s *ContentStore) GetScene(_ context.Context, sceneID string) (domain.Scene, error) {
	if scene, ok := s.bundle.Scene(sceneID); ok {
		return scene, nil
	}
	return domain.Scene{}, domain.ErrSceneNotFound
}

func (s *ContentStore) LookupWord(_ context.Context, key string) (domain.WordEntry, error) {
	if entry, ok := s.bundle.Dictionary[key]; ok {
		return entry, nil
	}
	return domain.WordEntry{}, domain.ErrWordNotFound
}

func (s *ContentStore) LoadQuiz(_ context.Context, sceneID string) (domain.Quiz, error) {
	if q, ok := s.bundle.Quizzes[sceneID]; ok {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
