package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
)

const (
	ToolCheckOrderStatus  = "check_order_status"
	ToolCheckTracking     = "check_tracking"
	ToolInitiateRefund    = "initiate_refund"
	ToolCheckReturnStatus = "check_return_status"

	// Admin-only handlers: dispatchable, but never part of the LLM
	// tool schema.
	ToolAdminReceiveReturn = "admin_receive_return"
	ToolAdminShipReturn    = "admin_ship_return"
	ToolAdminApproveRefund = "admin_approve_refund"
	ToolAdminDenyRefund    = "admin_deny_refund"
)

type handler struct {
	info       *schema.ToolInfo
	llmVisible bool
	problem    contractx.ProblemType
	exec       func(ctx context.Context, args map[string]any) contractx.ToolResult
}

// Catalog is the function dispatcher: a registry mapping tool names to
// validated handlers over the ledger. It implements contract.Dispatcher.
type Catalog struct {
	ledger   *ledgerx.Store
	notifier contractx.Notifier

	handlers map[string]handler
	names    []string

	now func() time.Time
}

var _ contractx.ToolGateway = (*Catalog)(nil)

type CatalogOption func(*Catalog)

// WithClock overrides the dispatcher clock, for deterministic tests.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCatalog(store *ledgerx.Store, notifier contractx.Notifier, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		ledger:   store,
		notifier: notifier,
		handlers: make(map[string]handler, 8),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registerAll()
	return c
}

func (c *Catalog) register(name string, h handler) {
	c.handlers[name] = h
	c.names = append(c.names, name)
}

// Infos returns the LLM-visible tool schema, in registration order.
// This is the schema passed with every model request.
func (c *Catalog) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(c.names))
	for _, name := range c.names {
		h := c.handlers[name]
		if h.llmVisible {
			out = append(out, h.info)
		}
	}
	return out
}

// ProblemFor maps a tool name to the problem category used for attempt
// tracking.
func (c *Catalog) ProblemFor(tool string) contractx.ProblemType {
	h, ok := c.handlers[tool]
	if !ok {
		return contractx.ProblemGeneral
	}
	return h.problem
}

// Dispatch runs one tool call. Every failure comes back as a structured
// result; nothing is raised past the orchestrator.
func (c *Catalog) Dispatch(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	h, ok := c.handlers[req.Tool]
	if !ok {
		return contractx.ToolResult{
			CallID: req.CallID,
			Tool:   req.Tool,
			Error:  fmt.Errorf("%w: unknown tool %q", contractx.ErrValidation, req.Tool).Error(),
		}
	}

	result := h.exec(ctx, req.Args)
	result.CallID = req.CallID
	result.Tool = req.Tool

	evt := log.Debug().Str("tool", req.Tool).Bool("resolved", result.Resolved)
	if result.Error != "" {
		evt = log.Warn().Str("tool", req.Tool).Str("error", result.Error)
	}
	evt.Msg("tool dispatched")

	return result
}

func (c *Catalog) publish(ctx context.Context, event contractx.RefundEvent) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("kind", event.Kind).Str("refund_id", event.RefundID).
			Msg("refund event publish failed")
	}
}

func errorResult(err error) contractx.ToolResult {
	return contractx.ToolResult{Error: err.Error()}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	v, ok := raw.(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", contractx.ErrValidation, key)
	}
	return v, nil
}
