// Package transcript turns scene transcripts into clickable tokens and
// resolves a clicked token to its dictionary entry.
package transcript

import (
	"strings"
	"unicode"

	"tulu-service/internal/domain"
)

// trailingPunct is stripped from the end of a token before lookup.
const trailingPunct = ".,!?"

// Token is one clickable unit of a transcript line. Surface is what gets
// displayed; Key is what gets looked up.
type Token struct {
	Surface string `json:"surface"`
	Key     string `json:"key"`
	Gloss   string `json:"gloss,omitempty"`
}

// Tokenize returns the displayable tokens of a line in display order. Lines
// carrying token/gloss pairs keep them as-is; text lines are split on single
// spaces and every token gets the line translation as its gloss. Empty pieces
// produced by repeated spaces are dropped.
func Tokenize(line domain.TranscriptLine) []Token {
	if len(line.Tokens) > 0 {
		out := make([]Token, 0, len(line.Tokens))
		for _, tg := range line.Tokens {
			out = append(out, Token{Surface: tg.Token, Key: Normalize(tg.Token), Gloss: tg.Gloss})
		}
		return out
	}
	parts := strings.Split(line.Text, " ")
	out := make([]Token, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, Token{Surface: p, Key: Normalize(p), Gloss: line.Translation})
	}
	return out
}

// TokenizeScene tokenizes every line of a scene.
func TokenizeScene(scene domain.Scene) [][]Token {
	lines := make([][]Token, 0, len(scene.Transcript))
	for _, line := range scene.Transcript {
		lines = append(lines, Tokenize(line))
	}
	return lines
}

// Normalize maps a surface token to its dictionary key: Turkish-aware lower
// case with trailing . , ! ? and any space between them removed.
// Normalize(Normalize(t)) == Normalize(t).
func Normalize(token string) string {
	t := strings.TrimSpace(token)
	t = strings.TrimRightFunc(t, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(trailingPunct, r)
	})
	return strings.ToLowerSpecial(unicode.TurkishCase, t)
}
