package stylewatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/internal/browser"
	"github.com/hazyhaar/stylewatch/internal/journal"
	"github.com/hazyhaar/stylewatch/internal/kit"
	"github.com/hazyhaar/stylewatch/internal/staticdom"
	"github.com/hazyhaar/stylewatch/matrix"
)

// SessionInfo describes one open capture session.
type SessionInfo struct {
	ID       string    `json:"id"`
	URL      string    `json:"url,omitempty"`
	Kind     string    `json:"kind"` // "live" or "static"
	OpenedAt time.Time `json:"opened_at"`
	Entries  int       `json:"entries"`
}

// session binds an environment to its own matrix store. Stores are never
// shared across sessions.
type session struct {
	info  SessionInfo
	env   host.Environment
	store *matrix.Store
}

// OpenSession opens a browser tab on pageURL and returns the new
// session. Requires Start to have run.
func (e *Engine) OpenSession(ctx context.Context, pageURL string) (SessionInfo, error) {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		return SessionInfo{}, fmt.Errorf("stylewatch: open %q: %w", pageURL, ErrBrowserNotStarted)
	}

	id := e.newID()
	tab, err := browser.OpenTab(ctx, e.mgr, pageURL, id)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("stylewatch: open %q: %w", pageURL, err)
	}
	return e.addSession(ctx, id, pageURL, "live", browser.NewEnv(tab, e.logger)), nil
}

// OpenStaticSession parses an HTML document into a browserless session.
// Captures against it read author-declared inline styles only and
// support no simulation; Fallback carries the rest.
func (e *Engine) OpenStaticSession(ctx context.Context, doc, baseURL string) (SessionInfo, error) {
	d, err := staticdom.ParseString(ctx, doc, staticdom.Options{BaseURL: baseURL, Logger: e.logger})
	if err != nil {
		return SessionInfo{}, fmt.Errorf("stylewatch: open static: %w", err)
	}
	return e.addSession(ctx, e.newID(), baseURL, "static", d), nil
}

func (e *Engine) addSession(ctx context.Context, id, url, kind string, env host.Environment) SessionInfo {
	s := &session{
		info: SessionInfo{ID: id, URL: url, Kind: kind, OpenedAt: time.Now()},
		env:  env,
	}
	s.store = matrix.New()

	e.mu.Lock()
	e.sessions[id] = s
	e.mu.Unlock()

	e.journal.Record(ctx, journal.Event{
		SessionID: id,
		Kind:      journal.KindSessionOpen,
		Detail:    detailJSON(map[string]string{"kind": kind, "url": url, "transport": kit.GetTransport(ctx)}),
	})
	e.logger.Info("stylewatch: session opened", "session_id", id, "kind", kind, "url", url,
		"transport", kit.GetTransport(ctx))
	return s.info
}

// CloseSession closes the session's environment and discards its matrix.
func (e *Engine) CloseSession(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	if ok {
		delete(e.sessions, sessionID)
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("stylewatch: session %q: %w", sessionID, ErrSessionNotFound)
	}

	err := s.env.Close()
	e.journal.Record(ctx, journal.Event{SessionID: sessionID, Kind: journal.KindSessionClose})
	e.logger.Info("stylewatch: session closed", "session_id", sessionID, "entries", s.store.Len())
	if err != nil {
		return fmt.Errorf("stylewatch: close session %q: %w", sessionID, err)
	}
	return nil
}

// Sessions lists open sessions with current entry counts.
func (e *Engine) Sessions() []SessionInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]SessionInfo, 0, len(e.sessions))
	for _, s := range e.sessions {
		info := s.info
		info.Entries = s.store.Len()
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *Engine) session(id string) (*session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("stylewatch: session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}
