// CLAUDE:SUMMARY Exposes capture, fallback and matrix assembly as local connectivity services for sibling jobs.
package stylewatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hazyhaar/stylewatch/connectivity"
	"github.com/hazyhaar/stylewatch/internal/kit"
	"github.com/hazyhaar/stylewatch/style"
)

// RegisterConnectivity publishes engine operations on the router so
// sibling jobs can drive captures in-process, without MCP or HTTP in
// between. Handlers run behind the standard recovery and logging chain.
func (e *Engine) RegisterConnectivity(router *connectivity.Router) {
	mw := connectivity.Chain(
		connectivity.Recovery(e.logger),
		connectivity.Logging(e.logger),
	)
	router.RegisterLocal("stylewatch_capture", mw(e.handleCaptureService))
	router.RegisterLocal("stylewatch_fallback", mw(e.handleFallbackService))
	router.RegisterLocal("stylewatch_matrix", mw(e.handleMatrixService))
}

func (e *Engine) handleCaptureService(ctx context.Context, payload []byte) ([]byte, error) {
	var req struct {
		SessionID   string      `json:"session_id"`
		Selector    string      `json:"selector"`
		State       style.State `json:"state"`
		Key         string      `json:"key"`
		SkipSubtree bool        `json:"skip_subtree"`
		NoSimulate  bool        `json:"no_simulate"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("stylewatch: decode capture request: %w", err)
	}
	ctx = serviceContext(ctx, req.SessionID)
	res, err := e.Capture(ctx, req.SessionID, req.Selector, CaptureOptions{
		State:       req.State,
		Key:         req.Key,
		SkipSubtree: req.SkipSubtree,
		NoSimulate:  req.NoSimulate,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (e *Engine) handleFallbackService(ctx context.Context, payload []byte) ([]byte, error) {
	var req struct {
		SessionID string `json:"session_id"`
		Selector  string `json:"selector"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("stylewatch: decode fallback request: %w", err)
	}
	res, err := e.Fallback(serviceContext(ctx, req.SessionID), req.SessionID, req.Selector)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (e *Engine) handleMatrixService(ctx context.Context, payload []byte) ([]byte, error) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("stylewatch: decode matrix request: %w", err)
	}
	recs, err := e.Matrix(req.SessionID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recs)
}

// serviceContext tags a connectivity call so the journal and logs can
// tell which transport drove a capture.
func serviceContext(ctx context.Context, sessionID string) context.Context {
	ctx = kit.WithTransport(ctx, "connectivity")
	if sessionID != "" {
		ctx = kit.WithSessionID(ctx, sessionID)
	}
	return ctx
}
