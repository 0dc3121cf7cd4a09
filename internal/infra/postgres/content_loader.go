package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tulu-service/internal/domain"
)

// ContentLoader reads learning content from Postgres. It satisfies
// app.ContentStore and the quiz loaders of the cache layers.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) ListSeries(ctx context.Context) ([]domain.Series, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, title, description FROM series ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Series
		index = make(map[string]int)
	)
	for rows.Next() {
		var s domain.Series
		if err := rows.Scan(&s.ID, &s.Title, &s.Description); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}

	sceneRows, err := l.pool.Query(ctx, `SELECT series_id, id FROM scenes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list series scenes: %w", err)
	}
	defer sceneRows.Close()
	for sceneRows.Next() {
		var seriesID, sceneID string
		if err := sceneRows.Scan(&seriesID, &sceneID); err != nil {
			return nil, fmt.Errorf("scan series scene: %w", err)
		}
		if i, ok := index[seriesID]; ok {
			out[i].SceneIDs = append(out[i].SceneIDs, sceneID)
		}
	}
	return out, sceneRows.Err()
}

func (l *ContentLoader) ListScenes(ctx context.Context) ([]domain.Scene, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM scenes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []domain.Scene
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		var scene domain.Scene
		if err := json.Unmarshal(raw, &scene); err != nil {
			return nil, fmt.Errorf("unmarshal scene: %w", err)
		}
		out = append(out, scene)
	}
	return out, rows.Err()
}

func (l *ContentLoader) GetScene(ctx context.Context, sceneID string) (domain.Scene, error) {
	var scene domain.Scene
	if err := l.queryJSON(ctx, `SELECT data FROM scenes WHERE id=$1`, sceneID, &scene); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Scene{}, domain.ErrSceneNotFound
		}
		return domain.Scene{}, fmt.Errorf("load scene: %w", err)
	}
	return scene, nil
}

func (l *ContentLoader) LookupWord(ctx context.Context, key string) (domain.WordEntry, error) {
	var entry domain.WordEntry
	if err := l.queryJSON(ctx, `SELECT data FROM words WHERE key=$1`, key, &entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WordEntry{}, domain.ErrWordNotFound
		}
		return domain.WordEntry{}, fmt.Errorf("load word: %w", err)
	}
	return entry, nil
}

func (l *ContentLoader) LoadQuiz(ctx context.Context, sceneID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := l.queryJSON(ctx, `SELECT data FROM quizzes WHERE scene_id=$1`, sceneID, &quiz); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (l *ContentLoader) queryJSON(ctx context.Context, query, arg string, dst any) error {
	var raw []byte
	if err := l.pool.QueryRow(ctx, query, arg).Scan(&raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
