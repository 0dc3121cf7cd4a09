// Package content holds the learning material the service starts from: TV
// series with their scene transcripts, the word dictionary and the per-scene
// quizzes. The embedded seed data is the default; a directory with the same
// three files can replace it.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"tulu-service/internal/domain"
	"tulu-service/internal/transcript"
)

//go:embed seed/*.json
var seedFS embed.FS

const (
	seriesFile     = "series.json"
	dictionaryFile = "dictionary.json"
	quizzesFile    = "quizzes.json"
)

// Bundle is a fully validated set of content.
type Bundle struct {
	Series     []domain.Series
	Scenes     []domain.Scene
	Dictionary map[string]domain.WordEntry
	Quizzes    map[string]domain.Quiz
}

type seriesDoc struct {
	Series []struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Scenes      []domain.Scene `json:"scenes"`
	} `json:"series"`
}

type dictionaryDoc struct {
	Words []domain.WordEntry `json:"words"`
}

type quizzesDoc struct {
	Quizzes []domain.Quiz `json:"quizzes"`
}

// Seed returns the bundle compiled into the binary.
func Seed() (Bundle, error) {
	sub, err := fs.Sub(seedFS, "seed")
	if err != nil {
		return Bundle{}, err
	}
	return Load(sub)
}

// LoadDir reads a bundle from a directory on disk. An empty dir means the
// embedded seed.
func LoadDir(dir string) (Bundle, error) {
	if dir == "" {
		return Seed()
	}
	return Load(os.DirFS(dir))
}

// Load parses series.json, dictionary.json and quizzes.json from fsys.
func Load(fsys fs.FS) (Bundle, error) {
	var sd seriesDoc
	if err := readJSON(fsys, seriesFile, &sd); err != nil {
		return Bundle{}, err
	}
	var dd dictionaryDoc
	if err := readJSON(fsys, dictionaryFile, &dd); err != nil {
		return Bundle{}, err
	}
	var qd quizzesDoc
	if err := readJSON(fsys, quizzesFile, &qd); err != nil {
		return Bundle{}, err
	}

	b := Bundle{
		Dictionary: make(map[string]domain.WordEntry, len(dd.Words)),
		Quizzes:    make(map[string]domain.Quiz, len(qd.Quizzes)),
	}
	sceneIDs := make(map[string]struct{})
	for _, s := range sd.Series {
		series := domain.Series{ID: s.ID, Title: s.Title, Description: s.Description}
		for _, scene := range s.Scenes {
			if scene.ID == "" {
				return Bundle{}, fmt.Errorf("series %q: scene without id", s.ID)
			}
			if _, dup := sceneIDs[scene.ID]; dup {
				return Bundle{}, fmt.Errorf("duplicate scene id %q", scene.ID)
			}
			sceneIDs[scene.ID] = struct{}{}
			scene.SeriesID = s.ID
			series.SceneIDs = append(series.SceneIDs, scene.ID)
			b.Scenes = append(b.Scenes, scene)
		}
		b.Series = append(b.Series, series)
	}
	for _, w := range dd.Words {
		key := transcript.Normalize(w.Word)
		if key == "" {
			return Bundle{}, fmt.Errorf("dictionary entry without word")
		}
		b.Dictionary[key] = w
	}
	for _, q := range qd.Quizzes {
		if _, ok := sceneIDs[q.SceneID]; !ok {
			return Bundle{}, fmt.Errorf("quiz for unknown scene %q", q.SceneID)
		}
		if err := q.Validate(); err != nil {
			return Bundle{}, err
		}
		b.Quizzes[q.SceneID] = q
	}
	return b, nil
}

// Scene returns the scene with the given id.
func (b Bundle) Scene(id string) (domain.Scene, bool) {
	for _, s := range b.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Scene{}, false
}

func readJSON(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
