package transcript

import (
	"context"
	"sync"

	"tulu-service/internal/domain"
)

// Popup is what the word popup currently shows. Pending means a token is
// selected but its lookup has not resolved yet; Open means Entry is ready.
type Popup struct {
	Token   string           `json:"token,omitempty"`
	Key     string           `json:"key,omitempty"`
	Entry   domain.WordEntry `json:"entry"`
	Pending bool             `json:"pending"`
	Open    bool             `json:"open"`
}

// Engine tracks the active token of a transcript view. Only the most recent
// selection may fill the popup: every selection bumps a sequence number and a
// lookup result is dropped if the sequence moved on while it was in flight.
type Engine struct {
	lookup Lookuper

	mu       sync.Mutex
	seq      uint64
	popup    Popup
	listener func(Popup)
}

func NewEngine(lookup Lookuper) *Engine {
	return &Engine{lookup: lookup}
}

// OnChange registers fn to receive every popup change. fn runs outside the
// engine lock.
func (e *Engine) OnChange(fn func(Popup)) {
	e.mu.Lock()
	e.listener = fn
	e.mu.Unlock()
}

// Popup returns the current popup state.
func (e *Engine) Popup() Popup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.popup
}

// SelectToken makes token the active one and resolves it in the background.
// The returned channel yields the popup if this selection's result was
// applied, and is closed without a value if a newer selection (or a close)
// superseded it.
func (e *Engine) SelectToken(ctx context.Context, token string) <-chan Popup {
	key := Normalize(token)

	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.popup = Popup{Token: token, Key: key, Pending: true}
	pending, listener := e.popup, e.listener
	e.mu.Unlock()
	notify(listener, pending)

	done := make(chan Popup, 1)
	go func() {
		defer close(done)
		entry := e.lookup.Lookup(ctx, key)

		e.mu.Lock()
		if seq != e.seq {
			e.mu.Unlock()
			return
		}
		e.popup = Popup{Token: token, Key: key, Entry: entry, Open: true}
		applied, listener := e.popup, e.listener
		e.mu.Unlock()

		notify(listener, applied)
		done <- applied
	}()
	return done
}

// ClosePopup clears the active token. Lookups still in flight become stale.
func (e *Engine) ClosePopup() {
	e.mu.Lock()
	if e.popup == (Popup{}) {
		e.mu.Unlock()
		return
	}
	e.seq++
	e.popup = Popup{}
	listener := e.listener
	e.mu.Unlock()
	notify(listener, Popup{})
}

func notify(fn func(Popup), p Popup) {
	if fn != nil {
		fn(p)
	}
}
