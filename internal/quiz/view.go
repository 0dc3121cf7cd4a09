package quiz

// QuestionView is a question as shown to the student; it never carries the
// correct index.
type QuestionView struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// View is a read-only snapshot of a session.
type View struct {
	SessionID    string        `json:"sessionId"`
	SceneID      string        `json:"sceneId"`
	Phase        Phase         `json:"phase"`
	Index        int           `json:"index"`
	Total        int           `json:"total"`
	RunningScore int           `json:"runningScore"`
	Question     *QuestionView `json:"question,omitempty"`

	// Set while explaining.
	Chosen       *int          `json:"chosen,omitempty"`
	Correct      *bool         `json:"correct,omitempty"`
	CorrectIndex *int          `json:"correctIndex,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
	Options      []OptionState `json:"optionStates,omitempty"`

	// Set once completed.
	Score   *int   `json:"score,omitempty"`
	Band    Band   `json:"band,omitempty"`
	Message string `json:"message,omitempty"`

	Closed bool `json:"closed,omitempty"`
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID:    s.id,
		SceneID:      s.quiz.SceneID,
		Phase:        s.phase,
		Index:        s.current,
		Total:        len(s.quiz.Questions),
		RunningScore: s.running,
		Closed:       s.closed,
	}

	switch s.phase {
	case PhaseCompleted:
		score := s.score
		v.Score = &score
		v.Band = BandFor(score, v.Total)
		v.Message = v.Band.Message()
		return v
	case PhaseExplaining:
		q := s.quiz.Questions[s.current]
		chosen, correctIdx := s.chosen, q.CorrectIndex
		correct := chosen == correctIdx
		v.Chosen = &chosen
		v.Correct = &correct
		v.CorrectIndex = &correctIdx
		v.Explanation = q.Explanation
		v.Options = ClassifyOptions(q, chosen)
	}

	q := s.quiz.Questions[s.current]
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	v.Question = &QuestionView{ID: q.ID, Prompt: q.Prompt, Options: options}
	return v
}
