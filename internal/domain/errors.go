package domain

import "errors"

var (
	// ErrSceneNotFound is returned when a scene id is unknown.
	ErrSceneNotFound = errors.New("scene not found")
	// ErrWordNotFound is returned when a token has no dictionary entry.
	ErrWordNotFound = errors.New("word not found")
	// ErrQuizNotFound indicates there is no quiz available for a scene.
	ErrQuizNotFound = errors.New("no quiz available")
	// ErrInvalidQuiz indicates quiz content that cannot be played (e.g. no questions).
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrSessionNotFound is returned when a quiz session does not exist or was closed.
	ErrSessionNotFound = errors.New("quiz session not found")
)
