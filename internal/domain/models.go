package domain

import "time"

// Series groups scenes taken from one TV drama.
type Series struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SceneIDs    []string `json:"scene_ids"`
}

// Scene is a unit of learning content pairing a video with its transcript.
type Scene struct {
	ID         string           `json:"id"`
	SeriesID   string           `json:"series_id,omitempty"`
	Title      string           `json:"title"`
	VideoURL   string           `json:"video_url,omitempty"`
	EmbedID    string           `json:"embed_id,omitempty"`
	Transcript []TranscriptLine `json:"transcript"`
}

// TranscriptLine is either a run of glossed tokens or a whole line of text with
// a single translation. Tokens win when both are present.
type TranscriptLine struct {
	Time        float64      `json:"time,omitempty"`
	Text        string       `json:"text,omitempty"`
	Translation string       `json:"translation,omitempty"`
	Tokens      []TokenGloss `json:"tokens,omitempty"`
}

// TokenGloss pairs a surface token with its meaning in context.
type TokenGloss struct {
	Token string `json:"token"`
	Gloss string `json:"gloss"`
}

// WordEntry is the lexical information shown for a clicked token.
type WordEntry struct {
	Word          string `json:"word"`
	Meaning       string `json:"meaning"`
	Pronunciation string `json:"pronunciation"`
	Example       string `json:"example"`
}

const (
	NotFoundMeaning       = "Word not found in dictionary"
	NotFoundPronunciation = "N/A"
	NotFoundExample       = "N/A"
)

// NotFoundWord is the placeholder shown when a token has no dictionary entry.
func NotFoundWord(word string) WordEntry {
	return WordEntry{
		Word:          word,
		Meaning:       NotFoundMeaning,
		Pronunciation: NotFoundPronunciation,
		Example:       NotFoundExample,
	}
}

// IsNotFound reports whether e carries the not-found placeholder.
func (e WordEntry) IsNotFound() bool {
	return e.Meaning == NotFoundMeaning && e.Pronunciation == NotFoundPronunciation && e.Example == NotFoundExample
}

// OptionsPerQuestion is the fixed number of choices on every quiz question.
const OptionsPerQuestion = 4

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           int      `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct"`
	Explanation  string   `json:"explanation"`
}

// Quiz is the ordered list of questions attached to a scene.
type Quiz struct {
	SceneID   string     `json:"scene_id"`
	Questions []Question `json:"questions"`
}

// ChatRole identifies who wrote a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a client-side tutor conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatExchange is a persisted question/answer pair of a tutor session.
type ChatExchange struct {
	ID        string    `json:"id" bson:"id"`
	SessionID string    `json:"session_id" bson:"session_id"`
	Question  string    `json:"question" bson:"question"`
	Answer    string    `json:"answer" bson:"answer"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// TutorReply is the tutor's answer plus the session it belongs to.
type TutorReply struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}
