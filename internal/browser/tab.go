package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab wraps a Rod page prepared for style capture: stealth applied,
// resource blocking configured, navigation completed.
type Tab struct {
	Page    *rod.Page
	URL     string
	ID      string
	manager *Manager
}

// OpenTab creates a new stealth tab and navigates it to the URL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, id string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if blocked := blockableResources(mgr.cfg.BlockResources, mgr.cfg.Logger); len(blocked) > 0 {
		if err := applyResourceBlocking(page, blocked); err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{
		Page:    page,
		URL:     pageURL,
		ID:      id,
		manager: mgr,
	}, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}

// blockableResources filters the configured block list. Stylesheets are
// load-bearing for capture and are dropped from the list with a warning.
func blockableResources(types []string, log *slog.Logger) []string {
	var out []string
	for _, t := range types {
		if strings.EqualFold(t, "stylesheets") || strings.EqualFold(t, "stylesheet") {
			log.Warn("browser: refusing to block stylesheets; captures read them")
			continue
		}
		out = append(out, t)
	}
	return out
}

// applyResourceBlocking sets up request interception to drop the given
// resource types (images, fonts, media).
func applyResourceBlocking(page *rod.Page, types []string) error {
	blockSet := make(map[string]bool, len(types))
	for _, t := range types {
		blockSet[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()

	router.MustAdd("*", func(ctx *rod.Hijack) {
		resType := string(ctx.Request.Type())

		if shouldBlock(blockSet, resType) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	go router.Run()

	return nil
}

func shouldBlock(blockSet map[string]bool, resType string) bool {
	lower := strings.ToLower(resType)

	// Map resource types to our config names.
	switch lower {
	case "image":
		return blockSet["images"]
	case "font":
		return blockSet["fonts"]
	case "media":
		return blockSet["media"]
	}

	return blockSet[lower]
}
