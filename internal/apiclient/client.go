// Package apiclient talks to the Tulu REST API. The CLI clients use it as the
// remote word lookup and tutor backends.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tulu-service/internal/domain"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api status %d", e.StatusCode)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchWord implements transcript.WordFetcher.
func (c *Client) FetchWord(ctx context.Context, token string) (domain.WordEntry, error) {
	var entry domain.WordEntry
	err := c.do(ctx, http.MethodGet, "/word/"+url.PathEscape(token), nil, &entry)
	return entry, err
}

// ListScenes returns every scene; the first is the default selection.
func (c *Client) ListScenes(ctx context.Context) ([]domain.Scene, error) {
	var out struct {
		Scenes []domain.Scene `json:"scenes"`
	}
	if err := c.do(ctx, http.MethodGet, "/scenes", nil, &out); err != nil {
		return nil, err
	}
	return out.Scenes, nil
}

// GetScene fetches one scene.
func (c *Client) GetScene(ctx context.Context, sceneID string) (domain.Scene, error) {
	var scene domain.Scene
	err := c.do(ctx, http.MethodGet, "/scenes/"+url.PathEscape(sceneID), nil, &scene)
	return scene, err
}

// Ask implements tutor.Asker. An empty sessionID is sent as null.
func (c *Client) Ask(ctx context.Context, question, sessionID string) (domain.TutorReply, error) {
	body := struct {
		Question  string  `json:"question"`
		SessionID *string `json:"session_id"`
	}{Question: question}
	if sessionID != "" {
		body.SessionID = &sessionID
	}
	var reply domain.TutorReply
	if err := c.do(ctx, http.MethodPost, "/tutor", body, &reply); err != nil {
		return domain.TutorReply{}, err
	}
	if reply.Answer == "" {
		return domain.TutorReply{}, fmt.Errorf("tutor reply without answer")
	}
	return reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&detail)
		return &StatusError{StatusCode: resp.StatusCode, Detail: detail.Detail}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
