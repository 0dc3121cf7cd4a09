// Package tts proxies text-to-speech requests to ElevenLabs and keeps the
// resulting audio in a disk cache.
package tts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"tulu-service/internal/logger"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	DefaultModel   = "eleven_multilingual_v2"
	ContentType    = "audio/mpeg"

	// MaxTextLength bounds a single synthesis request.
	MaxTextLength = 500
)

// Voices maps the aliases clients may send to ElevenLabs voice ids.
var Voices = map[string]string{
	"turkish_female": "mohCpqeo3bXb0EzBQ9C3",
	"turkish_male":   "IuRRIAcbQK5AQk1XevPj",
	"aria":           "9BWtsMINqrJLrRacOk9x",
	"liam":           "TX3LPaxmHKxFdv7VOQHJ",
}

var (
	// ErrUnavailable means no audio could be produced (no key, or upstream failed).
	ErrUnavailable = errors.New("tts unavailable")
	// ErrBadRequest covers empty or oversized text and unusable voices.
	ErrBadRequest = errors.New("invalid tts request")
	// ErrUnknownVoice is a bad request naming neither an alias nor a voice id.
	ErrUnknownVoice = fmt.Errorf("%w: unknown voice", ErrBadRequest)
)

var voiceIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Config configures the client.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	DefaultVoice string
	CacheDir     string
}

// Client synthesizes speech, reading from and filling the disk cache.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
	sf         singleflight.Group
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = Voices["turkish_female"]
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create tts cache dir: %w", err)
		}
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}, nil
}

// ResolveVoice turns an alias into a voice id; empty means the default voice.
// Anything else must look like a raw ElevenLabs id.
func (c *Client) ResolveVoice(voice string) (string, error) {
	if voice == "" {
		return c.cfg.DefaultVoice, nil
	}
	if id, ok := Voices[voice]; ok {
		return id, nil
	}
	if !voiceIDPattern.MatchString(voice) {
		return "", ErrUnknownVoice
	}
	return voice, nil
}

// Speak returns mp3 audio for text. Failures are never cached.
func (c *Client) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > MaxTextLength {
		return nil, ErrBadRequest
	}
	voiceID, err := c.ResolveVoice(voice)
	if err != nil {
		return nil, err
	}
	key := cacheKey(voiceID, text)

	if data, ok := c.readCache(key); ok {
		return data, nil
	}
	if c.cfg.APIKey == "" {
		return nil, ErrUnavailable
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if data, ok := c.readCache(key); ok {
			return data, nil
		}
		// shared by every waiting caller, so one caller leaving must not fail the rest
		data, err := c.synthesize(context.WithoutCancel(ctx), text, voiceID)
		if err != nil {
			c.log.Warn("tts synthesis failed", "voice", voiceID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.writeCache(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

func (c *Client) synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.cfg.Model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/"+url.PathEscape(voiceID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", ContentType)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs error %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if len(data) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}
	return data, nil
}

func cacheKey(voiceID, text string) string {
	h := sha256.Sum256([]byte(voiceID + ":" + text))
	return hex.EncodeToString(h[:16])
}

func (c *Client) readCache(key string) ([]byte, bool) {
	if c.cfg.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.cfg.CacheDir, key+".mp3"))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *Client) writeCache(key string, data []byte) {
	if c.cfg.CacheDir == "" {
		return
	}
	path := filepath.Join(c.cfg.CacheDir, key+".mp3")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.log.Warn("tts cache write failed", "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		c.log.Warn("tts cache rename failed", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
