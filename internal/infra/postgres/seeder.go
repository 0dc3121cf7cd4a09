package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"tulu-service/internal/content"
	"tulu-service/internal/domain"
)

type seriesRow struct {
	bun.BaseModel `bun:"table:series"`

	ID          string `bun:"id,pk"`
	Position    int    `bun:"position"`
	Title       string `bun:"title"`
	Description string `bun:"description"`
}

type sceneRow struct {
	bun.BaseModel `bun:"table:scenes"`

	ID       string       `bun:"id,pk"`
	SeriesID string       `bun:"series_id"`
	Position int          `bun:"position"`
	Data     domain.Scene `bun:"data,type:jsonb"`
}

type wordRow struct {
	bun.BaseModel `bun:"table:words"`

	Key  string           `bun:"key,pk"`
	Data domain.WordEntry `bun:"data,type:jsonb"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	SceneID   string      `bun:"scene_id,pk"`
	Data      domain.Quiz `bun:"data,type:jsonb"`
	UpdatedAt time.Time   `bun:"updated_at"`
}

// SeedStats reports how many rows each table received.
type SeedStats struct {
	Series, Scenes, Words, Quizzes int
}

// Seed upserts a content bundle. Series and scenes go first because words
// and quizzes are independent of each other but quizzes reference scenes.
func Seed(ctx context.Context, db *bun.DB, bundle content.Bundle) (SeedStats, error) {
	stats := SeedStats{
		Series:  len(bundle.Series),
		Scenes:  len(bundle.Scenes),
		Words:   len(bundle.Dictionary),
		Quizzes: len(bundle.Quizzes),
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(bundle.Series) > 0 {
			series := make([]seriesRow, 0, len(bundle.Series))
			for i, s := range bundle.Series {
				series = append(series, seriesRow{ID: s.ID, Position: i, Title: s.Title, Description: s.Description})
			}
			if _, err := tx.NewInsert().Model(&series).
				On("CONFLICT (id) DO UPDATE").
				Set("position = EXCLUDED.position").
				Set("title = EXCLUDED.title").
				Set("description = EXCLUDED.description").
				Exec(ctx); err != nil {
				return fmt.Errorf("seed series: %w", err)
			}
		}
		if len(bundle.Scenes) > 0 {
			scenes := make([]sceneRow, 0, len(bundle.Scenes))
			for i, s := range bundle.Scenes {
				scenes = append(scenes, sceneRow{ID: s.ID, SeriesID: s.SeriesID, Position: i, Data: s})
			}
			if _, err := tx.NewInsert().Model(&scenes).
				On("CONFLICT (id) DO UPDATE").
				Set("series_id = EXCLUDED.series_id").
				Set("position = EXCLUDED.position").
				Set("data = EXCLUDED.data").
				Exec(ctx); err != nil {
				return fmt.Errorf("seed scenes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(bundle.Dictionary) == 0 {
			return nil
		}
		words := make([]wordRow, 0, len(bundle.Dictionary))
		for key, entry := range bundle.Dictionary {
			words = append(words, wordRow{Key: key, Data: entry})
		}
		if _, err := db.NewInsert().Model(&words).
			On("CONFLICT (key) DO UPDATE").
			Set("data = EXCLUDED.data").
			Exec(gctx); err != nil {
			return fmt.Errorf("seed words: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if len(bundle.Quizzes) == 0 {
			return nil
		}
		now := time.Now().UTC()
		quizzes := make([]quizRow, 0, len(bundle.Quizzes))
		for sceneID, q := range bundle.Quizzes {
			quizzes = append(quizzes, quizRow{SceneID: sceneID, Data: q, UpdatedAt: now})
		}
		if _, err := db.NewInsert().Model(&quizzes).
			On("CONFLICT (scene_id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(gctx); err != nil {
			return fmt.Errorf("seed quizzes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return SeedStats{}, err
	}
	return stats, nil
}
