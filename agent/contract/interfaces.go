package contract

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel is the slice of the eino chat model surface the dialogue
// loop needs. Satisfied by any eino BaseChatModel.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Dispatcher resolves named tool calls into verified ledger transitions.
type Dispatcher interface {
	Dispatch(ctx context.Context, req ToolRequest) ToolResult
}

// ToolGateway is what the orchestrator sees: dispatch plus the
// problem-category mapping that drives attempt tracking.
type ToolGateway interface {
	Dispatcher
	ProblemFor(tool string) ProblemType
}

// Notifier receives refund lifecycle events.
type Notifier interface {
	Publish(ctx context.Context, event RefundEvent) error
}
