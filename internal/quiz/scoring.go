package quiz

import "tulu-service/internal/domain"

// Answer is one recorded choice.
type Answer struct {
	QuestionID  int `json:"questionId"`
	OptionIndex int `json:"optionIndex"`
}

// Score counts correct answers over the whole quiz. latest is merged into a
// copy of answers first, so the final choice always counts even if the map
// the caller holds was captured before it was written.
func Score(questions []domain.Question, answers map[int]int, latest Answer) int {
	merged := make(map[int]int, len(answers)+1)
	for id, idx := range answers {
		merged[id] = idx
	}
	merged[latest.QuestionID] = latest.OptionIndex

	score := 0
	for _, q := range questions {
		if idx, ok := merged[q.ID]; ok && idx == q.CorrectIndex {
			score++
		}
	}
	return score
}

// OptionState classifies an option once an answer has been chosen.
type OptionState string

const (
	OptionNeutral            OptionState = "neutral"
	OptionSelectedCorrect    OptionState = "selected_correct"
	OptionSelectedIncorrect  OptionState = "selected_incorrect"
	OptionCorrectNotSelected OptionState = "correct_not_selected"
)

// Classify is a pure function of the correct index, the chosen index and the
// option being rendered.
func Classify(correct, chosen, option int) OptionState {
	switch {
	case option == chosen && option == correct:
		return OptionSelectedCorrect
	case option == chosen:
		return OptionSelectedIncorrect
	case option == correct:
		return OptionCorrectNotSelected
	default:
		return OptionNeutral
	}
}

// ClassifyOptions classifies every option of q for the chosen index.
func ClassifyOptions(q domain.Question, chosen int) []OptionState {
	states := make([]OptionState, len(q.Options))
	for i := range q.Options {
		states[i] = Classify(q.CorrectIndex, chosen, i)
	}
	return states
}

// Band is the qualitative result of a finished quiz.
type Band string

const (
	BandPerfect        Band = "perfect"
	BandGreat          Band = "great"
	BandKeepPracticing Band = "keep_practicing"
)

// BandFor maps a score to its band: perfect when every answer is right, great
// from 80% up, keep practicing below.
func BandFor(score, total int) Band {
	switch {
	case total > 0 && score == total:
		return BandPerfect
	case total > 0 && score*5 >= total*4:
		return BandGreat
	default:
		return BandKeepPracticing
	}
}

// Message is the summary line shown for the band.
func (b Band) Message() string {
	switch b {
	case BandPerfect:
		return "Mükemmel! Perfect score!"
	case BandGreat:
		return "Harika! Great job!"
	default:
		return "Keep practicing! Devam et!"
	}
}
