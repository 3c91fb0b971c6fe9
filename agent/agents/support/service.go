// Package support wires the customer-support agent: session store,
// chat models, tool gateway, and the compiled handle-message graph.
package support

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/shopco/support-agent/agent/contract"
	nodex "github.com/shopco/support-agent/agent/nodes"
	statex "github.com/shopco/support-agent/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

const (
	defaultMaxToolRounds = 8
	defaultCallTimeout   = 30 * time.Second
)

type Config struct {
	SystemPrompt  string
	MaxToolRounds int
	CallTimeout   time.Duration
}

// Agent drives one support conversation per session id, strictly one
// turn at a time.
type Agent struct {
	store      statex.Store
	toolModel  contractx.ChatModel
	plainModel contractx.ChatModel
	tools      contractx.ToolGateway

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	dialogue nodex.DialogueConfig
	now      func() time.Time
}

// New compiles the handle-message graph. toolModel must be the chat
// model with the gateway's tool schema bound; plainModel the same model
// without tools.
func New(
	store statex.Store,
	toolModel contractx.ChatModel,
	plainModel contractx.ChatModel,
	tools contractx.ToolGateway,
	cfg Config,
) (*Agent, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if toolModel == nil || plainModel == nil {
		return nil, errors.New("chat models are required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if cfg.SystemPrompt == "" {
		return nil, errors.New("system prompt is required")
	}

	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	a := &Agent{
		store:      store,
		toolModel:  toolModel,
		plainModel: plainModel,
		tools:      tools,
		dialogue: nodex.DialogueConfig{
			SystemPrompt:  cfg.SystemPrompt,
			MaxToolRounds: maxRounds,
			CallTimeout:   callTimeout,
		},
		now: time.Now,
	}

	graphRunner, err := a.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleMessage processes one user turn and returns the assistant
// reply. Only ErrUpstreamUnavailable (and input validation) escape;
// tool-level failures are folded into the conversation.
func (a *Agent) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Reset discards the session's history and attempt counters.
func (a *Agent) Reset(ctx context.Context, sessionID string) error {
	return a.store.Delete(ctx, sessionID)
}
