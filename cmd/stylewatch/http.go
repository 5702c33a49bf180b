package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/stylewatch"
	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/internal/idgen"
	"github.com/hazyhaar/stylewatch/internal/journal"
	"github.com/hazyhaar/stylewatch/internal/kit"
	"github.com/hazyhaar/stylewatch/style"
)

// newHTTPHandler builds the REST surface. Same operations as the MCP
// tools, session-scoped under /api/sessions.
func newHTTPHandler(engine *stylewatch.Engine, jour *journal.Journal) http.Handler {
	r := chi.NewRouter()
	r.Use(tagRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/sessions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, engine.Sessions())
	})

	r.Post("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		info, err := engine.OpenSession(r.Context(), req.URL)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, info)
	})

	r.Post("/api/sessions/static", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HTML    string `json:"html"`
			BaseURL string `json:"base_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		info, err := engine.OpenStaticSession(r.Context(), req.HTML, req.BaseURL)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, info)
	})

	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "sessionID")
			if err := engine.CloseSession(r.Context(), id); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "closed", "session_id": id})
		})

		r.Get("/inventory", func(w http.ResponseWriter, r *http.Request) {
			refs, err := engine.Inventory(r.Context(), chi.URLParam(r, "sessionID"), stylewatch.InventoryOptions{
				Scope: r.URL.Query().Get("scope"),
				Limit: queryInt(r, "limit", 0),
			})
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, refs)
		})

		r.Post("/capture", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Selector    string      `json:"selector"`
				State       style.State `json:"state"`
				Key         string      `json:"key"`
				SkipSubtree bool        `json:"skip_subtree"`
				NoSimulate  bool        `json:"no_simulate"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			res, err := engine.Capture(r.Context(), chi.URLParam(r, "sessionID"), req.Selector, stylewatch.CaptureOptions{
				State:       req.State,
				Key:         req.Key,
				SkipSubtree: req.SkipSubtree,
				NoSimulate:  req.NoSimulate,
			})
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/fallback", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Selector string `json:"selector"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			res, err := engine.Fallback(r.Context(), chi.URLParam(r, "sessionID"), req.Selector)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/workflow", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Selectors []string `json:"selectors"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			plan, err := engine.Workflow(r.Context(), chi.URLParam(r, "sessionID"), req.Selectors)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, plan)
		})

		r.Get("/matrix", func(w http.ResponseWriter, r *http.Request) {
			recs, err := engine.Matrix(chi.URLParam(r, "sessionID"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, recs)
		})

		r.Get("/diff", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			d, err := engine.DiffStates(chi.URLParam(r, "sessionID"), q.Get("selector"),
				style.State(q.Get("from")), style.State(q.Get("to")))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, d)
		})

		r.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
			sums, err := engine.Summary(chi.URLParam(r, "sessionID"), r.URL.Query().Get("selector"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, sums)
		})

		r.Get("/context", func(w http.ResponseWriter, r *http.Request) {
			res, err := engine.ElementContext(r.Context(), chi.URLParam(r, "sessionID"),
				r.URL.Query().Get("selector"))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "sessionID")
			if err := engine.ResetMatrix(r.Context(), id); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": id})
		})
	})

	r.Get("/api/journal", func(w http.ResponseWriter, r *http.Request) {
		if jour == nil {
			writeError(w, http.StatusNotFound, errors.New("journal disabled"))
			return
		}
		events, err := jour.Recent(r.Context(), r.URL.Query().Get("session_id"), queryInt(r, "limit", 100))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	return r
}

var newRequestID = idgen.Prefixed("req_", idgen.Default)

// tagRequests stamps every request's context with the transport and a
// request ID, so engine logs and journal entries name their caller.
func tagRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithTransport(r.Context(), "http")
		ctx = kit.WithRequestID(ctx, newRequestID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusFor maps engine sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stylewatch.ErrSessionNotFound),
		errors.Is(err, stylewatch.ErrNotCaptured),
		errors.Is(err, host.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, host.ErrBadSelector):
		return http.StatusBadRequest
	case errors.Is(err, stylewatch.ErrBrowserNotStarted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
