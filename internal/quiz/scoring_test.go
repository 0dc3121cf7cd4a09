package quiz

import (
	"testing"

	"tulu-service/internal/domain"
)

func TestBandThresholds(t *testing.T) {
	cases := []struct {
		score, total int
		want         Band
	}{
		{4, 4, BandPerfect},
		{3, 4, BandKeepPracticing}, // 0.75 < 0.8
		{4, 5, BandGreat},          // exactly 0.8
		{5, 5, BandPerfect},
		{8, 10, BandGreat},
		{7, 10, BandKeepPracticing},
		{0, 4, BandKeepPracticing},
	}
	for _, tc := range cases {
		if got := BandFor(tc.score, tc.total); got != tc.want {
			t.Fatalf("BandFor(%d, %d) = %s, want %s", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	// correct is 2
	if got := Classify(2, 2, 2); got != OptionSelectedCorrect {
		t.Fatalf("chosen correct option: %s", got)
	}
	if got := Classify(2, 1, 1); got != OptionSelectedIncorrect {
		t.Fatalf("chosen wrong option: %s", got)
	}
	if got := Classify(2, 1, 2); got != OptionCorrectNotSelected {
		t.Fatalf("missed correct option: %s", got)
	}
	if got := Classify(2, 1, 0); got != OptionNeutral {
		t.Fatalf("untouched option: %s", got)
	}

	q := domain.Question{Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0}
	states := ClassifyOptions(q, 3)
	want := []OptionState{OptionCorrectNotSelected, OptionNeutral, OptionNeutral, OptionSelectedIncorrect}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("option %d: got %s, want %s", i, states[i], want[i])
		}
	}
}

func TestScoreMergesLatestAnswer(t *testing.T) {
	questions := []domain.Question{
		{ID: 1, CorrectIndex: 1},
		{ID: 2, CorrectIndex: 0},
	}
	stale := map[int]int{1: 1} // captured before the final answer was stored
	if got := Score(questions, stale, Answer{QuestionID: 2, OptionIndex: 0}); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if _, written := stale[2]; written || len(stale) != 1 {
		t.Fatalf("Score must not mutate the caller's map")
	}
}
