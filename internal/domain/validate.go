package domain

import "fmt"

// Validate checks that a quiz can be played: at least one question, unique
// question ids, four options each and a correct index pointing at one of them.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %q has no questions: %w", q.SceneID, ErrInvalidQuiz)
	}
	seen := make(map[int]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("quiz %q: duplicate question id %d: %w", q.SceneID, question.ID, ErrInvalidQuiz)
		}
		seen[question.ID] = struct{}{}
		if len(question.Options) != OptionsPerQuestion {
			return fmt.Errorf("quiz %q question %d: want %d options, got %d: %w",
				q.SceneID, question.ID, OptionsPerQuestion, len(question.Options), ErrInvalidQuiz)
		}
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return fmt.Errorf("quiz %q question %d: correct index %d out of range: %w",
				q.SceneID, question.ID, question.CorrectIndex, ErrInvalidQuiz)
		}
	}
	return nil
}
