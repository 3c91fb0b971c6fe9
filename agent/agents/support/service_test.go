package support

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
	statex "github.com/shopco/support-agent/agent/state"
	toolx "github.com/shopco/support-agent/agent/tool"
)

var testNow = time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

type scriptedModel struct {
	responses []*schema.Message
	err       error
	calls     int
}

func (f *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return schema.AssistantMessage("ok", nil), nil
	}
	msg := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return msg, nil
}

func newTestAgent(t *testing.T, toolModel *scriptedModel) (*Agent, *ledgerx.Store, statex.Store) {
	t.Helper()

	store := statex.NewMemoryStore()
	ledger := ledgerx.NewStore()
	catalog := toolx.NewCatalog(ledger, nil, toolx.WithClock(func() time.Time { return testNow }))

	agent, err := New(store, toolModel, &scriptedModel{}, catalog, Config{
		SystemPrompt: "You are support.",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return agent, ledger, store
}

func TestNewValidatesDependencies(t *testing.T) {
	ledger := ledgerx.NewStore()
	catalog := toolx.NewCatalog(ledger, nil)
	m := &scriptedModel{}
	cfg := Config{SystemPrompt: "p"}

	if _, err := New(nil, m, m, catalog, cfg); err == nil {
		t.Fatal("nil store must fail")
	}
	if _, err := New(statex.NewMemoryStore(), nil, m, catalog, cfg); err == nil {
		t.Fatal("nil tool model must fail")
	}
	if _, err := New(statex.NewMemoryStore(), m, m, nil, cfg); err == nil {
		t.Fatal("nil gateway must fail")
	}
	if _, err := New(statex.NewMemoryStore(), m, m, catalog, Config{}); err == nil {
		t.Fatal("empty system prompt must fail")
	}
}

func TestHandleMessagePlainExchange(t *testing.T) {
	toolModel := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("Hello! How can I help today?", nil),
	}}
	agent, _, store := newTestAgent(t, toolModel)

	reply, err := agent.HandleMessage(context.Background(), "sess-1", "hi there")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply != "Hello! How can I help today?" {
		t.Fatalf("unexpected reply %q", reply)
	}

	st, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("state not saved: %v", err)
	}
	if len(st.History) != 2 {
		t.Fatalf("expected 2 turns persisted, got %d", len(st.History))
	}
}

func TestHandleMessageDrivesRefundTool(t *testing.T) {
	toolModel := &scriptedModel{responses: []*schema.Message{
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{{
				ID: "call-1",
				Function: schema.FunctionCall{
					Name:      toolx.ToolInitiateRefund,
					Arguments: `{"order_id":"33333","reason":"changed mind"}`,
				},
			}},
		},
		schema.AssistantMessage("Done! Your order is cancelled and $75.00 is on its way back.", nil),
	}}
	agent, ledger, _ := newTestAgent(t, toolModel)

	reply, err := agent.HandleMessage(context.Background(), "sess-1", "cancel order 33333")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply == "" {
		t.Fatal("expected a reply")
	}

	order, _ := ledger.Order("33333")
	if order.Status != ledgerx.OrderCancelled {
		t.Fatalf("tool call did not land in the ledger: %s", order.Status)
	}
	refund, ok := ledger.Refund("REF-33333")
	if !ok || refund.Status != ledgerx.RefundCompleted {
		t.Fatalf("refund missing: %+v ok=%v", refund, ok)
	}
}

func TestHandleMessageKeepsHistoryAcrossTurns(t *testing.T) {
	toolModel := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("first", nil),
		schema.AssistantMessage("second", nil),
	}}
	agent, _, store := newTestAgent(t, toolModel)
	ctx := context.Background()

	if _, err := agent.HandleMessage(ctx, "sess-1", "one"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := agent.HandleMessage(ctx, "sess-1", "two"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	st, _ := store.Load(ctx, "sess-1")
	if len(st.History) != 4 {
		t.Fatalf("expected 4 turns after two exchanges, got %d", len(st.History))
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	agent, _, _ := newTestAgent(t, &scriptedModel{})
	ctx := context.Background()

	if _, err := agent.HandleMessage(ctx, "", "hello"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("blank session: got %v", err)
	}
	if _, err := agent.HandleMessage(ctx, "sess-1", "   "); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("blank message: got %v", err)
	}
}

func TestHandleMessageUpstreamFailure(t *testing.T) {
	toolModel := &scriptedModel{err: errors.New("connection refused")}
	agent, _, store := newTestAgent(t, toolModel)

	_, err := agent.HandleMessage(context.Background(), "sess-1", "hello")
	if !errors.Is(err, contractx.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	// A failed turn must not persist a half-written session.
	if _, err := store.Load(context.Background(), "sess-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("failed turn leaked state: %v", err)
	}
}

func TestResetDropsSession(t *testing.T) {
	toolModel := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("hi", nil),
	}}
	agent, _, store := newTestAgent(t, toolModel)
	ctx := context.Background()

	if _, err := agent.HandleMessage(ctx, "sess-1", "hello"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if err := agent.Reset(ctx, "sess-1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("session not dropped: %v", err)
	}
}
