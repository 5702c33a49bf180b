// CLAUDE:SUMMARY Registers all stylewatch MCP tools — sessions, inventory, capture, fallback, workflow, matrix, diff, summary, context.
package stylewatch

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/stylewatch/internal/kit"
	"github.com/hazyhaar/stylewatch/style"
)

// RegisterMCP registers stylewatch tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerOpenTool(srv)
	e.registerOpenStaticTool(srv)
	e.registerInventoryTool(srv)
	e.registerCaptureTool(srv)
	e.registerFallbackTool(srv)
	e.registerWorkflowTool(srv)
	e.registerMatrixTool(srv)
	e.registerDiffTool(srv)
	e.registerSummaryTool(srv)
	e.registerContextTool(srv)
	e.registerResetTool(srv)
	e.registerCloseTool(srv)
}

// toolChain is the endpoint middleware every tool runs behind: panics
// become tool errors, and each call is logged with its context tags.
func (e *Engine) toolChain() kit.Middleware {
	return kit.Chain(kit.Recovery(e.logger), kit.Logging(e.logger))
}

// mcpDecoded wraps a decoded request with the context enrichment shared
// by every tool: the call is tagged as MCP traffic and the target session
// rides along for the logging chain and the journal.
func mcpDecoded(req any, sessionID string) *kit.MCPDecodeResult {
	return &kit.MCPDecodeResult{
		Request: req,
		EnrichCtx: func(ctx context.Context) context.Context {
			ctx = kit.WithTransport(ctx, "mcp")
			if sessionID != "" {
				ctx = kit.WithSessionID(ctx, sessionID)
			}
			return ctx
		},
	}
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// stateEnum lists the interaction state vocabulary for tool schemas.
func stateEnum() []any {
	states := style.States()
	out := make([]any, 0, len(states))
	for _, st := range states {
		out = append(out, string(st))
	}
	return out
}

// --- open ---

type openRequest struct {
	URL string `json:"url"`
}

func (e *Engine) registerOpenTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_open",
		Description: "Open a live capture session on a web page. Returns the session to pass to every other tool.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Page URL to open in the managed browser"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*openRequest)
		return e.OpenSession(ctx, r.URL)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r openRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, ""), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- open_static ---

type openStaticRequest struct {
	HTML    string `json:"html"`
	BaseURL string `json:"base_url,omitempty"`
}

func (e *Engine) registerOpenStaticTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_open_static",
		Description: "Open a browserless session from raw HTML. Captures read author-declared styles only; combine with stylewatch_fallback for state styles.",
		InputSchema: inputSchema(map[string]any{
			"html":     map[string]any{"type": "string", "description": "HTML document to parse"},
			"base_url": map[string]any{"type": "string", "description": "Base URL for resolving linked stylesheets and relative links"},
		}, []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*openStaticRequest)
		return e.OpenStaticSession(ctx, r.HTML, r.BaseURL)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r openStaticRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, ""), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- inventory ---

type inventoryRequest struct {
	SessionID string `json:"session_id"`
	Scope     string `json:"scope,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (e *Engine) registerInventoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_inventory",
		Description: "List capture-worthy elements in the session's page, most visually significant first. Feed the refs to stylewatch_workflow or capture them directly.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID from stylewatch_open"},
			"scope":      map[string]any{"type": "string", "description": "Container selector to enumerate under (default: body)"},
			"limit":      map[string]any{"type": "integer", "description": "Max elements (default 24)"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*inventoryRequest)
		return e.Inventory(ctx, r.SessionID, InventoryOptions{Scope: r.Scope, Limit: r.Limit})
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r inventoryRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- capture ---

type captureRequest struct {
	SessionID   string `json:"session_id"`
	Selector    string `json:"selector"`
	State       string `json:"state,omitempty"`
	Key         string `json:"key,omitempty"`
	SkipSubtree bool   `json:"skip_subtree,omitempty"`
	NoSimulate  bool   `json:"no_simulate,omitempty"`
}

func (e *Engine) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_capture",
		Description: "Capture an element's computed style snapshot and store it in the session matrix. Give a state to sample that state; a local interaction simulation is attempted first.",
		InputSchema: inputSchema(map[string]any{
			"session_id":   map[string]any{"type": "string", "description": "Session ID"},
			"selector":     map[string]any{"type": "string", "description": "CSS selector of the element"},
			"state":        map[string]any{"type": "string", "enum": stateEnum(), "description": "Interaction state to capture (default when omitted)"},
			"key":          map[string]any{"type": "string", "description": "Override the matrix store key"},
			"skip_subtree": map[string]any{"type": "boolean", "description": "Skip descendant and pseudo-element sampling"},
			"no_simulate":  map[string]any{"type": "boolean", "description": "Capture the page as it stands, without simulating the state first"},
		}, []string{"session_id", "selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*captureRequest)
		return e.Capture(ctx, r.SessionID, r.Selector, CaptureOptions{
			State:       style.State(r.State),
			Key:         r.Key,
			SkipSubtree: r.SkipSubtree,
			NoSimulate:  r.NoSimulate,
		})
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r captureRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- fallback ---

type fallbackRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
}

func (e *Engine) registerFallbackTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_fallback",
		Description: "Infer the element's state styles from the page's stylesheets when live triggering is unavailable. Stores every inferred state without overwriting live captures.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
			"selector":   map[string]any{"type": "string", "description": "CSS selector of the element"},
		}, []string{"session_id", "selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*fallbackRequest)
		return e.Fallback(ctx, r.SessionID, r.Selector)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r fallbackRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- workflow ---

type workflowRequest struct {
	SessionID string   `json:"session_id"`
	Selectors []string `json:"selectors,omitempty"`
}

func (e *Engine) registerWorkflowTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_workflow",
		Description: "Plan the capture steps for the given elements, or for the whole page when no selectors are given. The plan is advisory: execute it by calling stylewatch_capture per step.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
			"selectors":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Elements to plan for; empty plans the whole page"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*workflowRequest)
		return e.Workflow(ctx, r.SessionID, r.Selectors)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r workflowRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- matrix ---

type matrixRequest struct {
	SessionID string `json:"session_id"`
}

func (e *Engine) registerMatrixTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_matrix",
		Description: "Return the session's assembled state matrix: one record per element, states keyed by name, origins marking live versus inferred.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*matrixRequest)
		return e.Matrix(r.SessionID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r matrixRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- diff ---

type diffRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
}

func (e *Engine) registerDiffTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_diff",
		Description: "Compute the property-level diff between two captured states of one element.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
			"selector":   map[string]any{"type": "string", "description": "CSS selector of the element"},
			"from":       map[string]any{"type": "string", "enum": stateEnum(), "description": "Baseline state (default when omitted)"},
			"to":         map[string]any{"type": "string", "enum": stateEnum(), "description": "State to compare against the baseline"},
		}, []string{"session_id", "selector", "to"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*diffRequest)
		d, err := e.DiffStates(r.SessionID, r.Selector, style.State(r.From), style.State(r.To))
		if err != nil {
			return nil, err
		}
		from := r.From
		if from == "" {
			from = string(style.StateDefault)
		}
		return map[string]any{
			"selector": r.Selector,
			"from":     from,
			"to":       r.To,
			"changes":  d,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r diffRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- summary ---

type summaryRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
}

func (e *Engine) registerSummaryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_summary",
		Description: "Summarize an element's captured state changes as human-readable phrases, one block per non-default state.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
			"selector":   map[string]any{"type": "string", "description": "CSS selector of the element"},
		}, []string{"session_id", "selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*summaryRequest)
		return e.Summary(r.SessionID, r.Selector)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r summaryRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- context ---

type contextRequest struct {
	SessionID string `json:"session_id"`
	Selector  string `json:"selector"`
}

func (e *Engine) registerContextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_context",
		Description: "Return an element's locator facts plus a sanitized markdown rendition of its subtree, for reading alongside summaries.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
			"selector":   map[string]any{"type": "string", "description": "CSS selector of the element"},
		}, []string{"session_id", "selector"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*contextRequest)
		return e.ElementContext(ctx, r.SessionID, r.Selector)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r contextRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- reset ---

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (e *Engine) registerResetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_reset",
		Description: "Clear the session's matrix store. Captured entries are discarded; the session stays open.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*resetRequest)
		if err := e.ResetMatrix(ctx, r.SessionID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "reset", "session_id": r.SessionID}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r resetRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}

// --- close ---

type closeRequest struct {
	SessionID string `json:"session_id"`
}

func (e *Engine) registerCloseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylewatch_close",
		Description: "Close a session: release its tab or document and discard its matrix.",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*closeRequest)
		if err := e.CloseSession(ctx, r.SessionID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "closed", "session_id": r.SessionID}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r closeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return mcpDecoded(&r, r.SessionID), nil
	}

	kit.RegisterMCPTool(srv, tool, e.toolChain()(endpoint), decode)
}
