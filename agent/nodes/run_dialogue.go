package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
	statex "github.com/shopco/support-agent/agent/state"
)

// DialogueConfig bounds the LLM/tool loop for one user turn.
type DialogueConfig struct {
	SystemPrompt string

	// MaxToolRounds caps the number of model calls that may request
	// tools in a single turn, guaranteeing termination even against a
	// model that never stops calling them.
	MaxToolRounds int

	// CallTimeout bounds each model call; expiry surfaces as
	// ErrUpstreamUnavailable.
	CallTimeout time.Duration
}

// RunDialogue drives the conversation for one user message: pick the
// temperature from the attempt tracker, call the model, dispatch any
// tool calls in order, append each result to history, and repeat until
// the model answers in plain text.
//
// toolModel has the tool schema bound; plainModel is the same model
// without tools, used to force a textual answer once the round budget
// is spent.
func RunDialogue(
	ctx context.Context,
	in *GraphState,
	toolModel contractx.ChatModel,
	plainModel contractx.ChatModel,
	tools contractx.ToolGateway,
	cfg DialogueConfig,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	st.AppendTurn(statex.Turn{Role: statex.RoleUser, Content: in.Text})

	for round := 0; round < cfg.MaxToolRounds; round++ {
		msg, err := generate(ctx, toolModel, cfg, st)
		if err != nil {
			return nil, err
		}

		if len(msg.ToolCalls) == 0 {
			in.Reply = strings.TrimSpace(msg.Content)
			st.AppendTurn(statex.Turn{Role: statex.RoleAssistant, Content: in.Reply})
			return in, nil
		}

		st.AppendTurn(assistantTurn(msg))

		// Tool calls are applied in the order the model gave them;
		// a failure never aborts the remaining calls in the batch.
		for _, call := range msg.ToolCalls {
			result := dispatchCall(ctx, tools, st, call)

			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(fmt.Sprintf(`{"tool":%q,"error":"encode tool result: %v"}`, call.Function.Name, err))
			}
			st.AppendTurn(statex.Turn{
				Role:       statex.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
			})
		}
	}

	log.Warn().Str("session_id", st.SessionID).Int("rounds", cfg.MaxToolRounds).
		Msg("tool round budget spent, forcing textual answer")

	msg, err := generate(ctx, plainModel, cfg, st)
	if err != nil {
		return nil, err
	}
	in.Reply = strings.TrimSpace(msg.Content)
	st.AppendTurn(statex.Turn{Role: statex.RoleAssistant, Content: in.Reply})
	return in, nil
}

func dispatchCall(
	ctx context.Context,
	tools contractx.ToolGateway,
	st *statex.SessionState,
	call schema.ToolCall,
) contractx.ToolResult {
	name := call.Function.Name

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolResult{
				CallID: call.ID,
				Tool:   name,
				Error:  fmt.Errorf("%w: invalid tool arguments: %v", contractx.ErrValidation, err).Error(),
			}
		}
	}

	problem := tools.ProblemFor(name)
	subject := subjectFromArgs(args)

	result := tools.Dispatch(ctx, contractx.ToolRequest{CallID: call.ID, Tool: name, Args: args})

	if result.OK() && result.Resolved {
		st.ResetProblem(problem, subject)
		st.ActiveProblem = problem
		st.ActiveSubject = subject
		return result
	}

	count := st.RecordAttempt(problem, subject)
	if st.IsStuck(problem, subject) {
		log.Warn().Str("problem", string(problem)).Str("subject", subject).Int("attempts", count).
			Msg("stuck on problem, raising temperature")
	}
	return result
}

// subjectFromArgs pins the attempt to an order: directly from order_id,
// or via the owning order of a return id.
func subjectFromArgs(args map[string]any) string {
	if v, ok := args["order_id"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := args["return_id"].(string); ok && strings.TrimSpace(v) != "" {
		return ledgerx.OrderIDFromSubject(v)
	}
	return "unknown"
}

func generate(
	ctx context.Context,
	chatModel contractx.ChatModel,
	cfg DialogueConfig,
	st *statex.SessionState,
) (*schema.Message, error) {
	callCtx := ctx
	if cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
		defer cancel()
	}

	temperature := st.Temperature()
	msg, err := chatModel.Generate(callCtx, historyMessages(cfg.SystemPrompt, st.History),
		einomodel.WithTemperature(temperature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrUpstreamUnavailable, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrUpstreamUnavailable)
	}

	log.Debug().Float32("temperature", temperature).Int("tool_calls", len(msg.ToolCalls)).
		Msg("model response")
	return msg, nil
}

func historyMessages(systemPrompt string, history []statex.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(history)+1)
	out = append(out, schema.SystemMessage(systemPrompt))
	for _, t := range history {
		switch t.Role {
		case statex.RoleUser:
			out = append(out, schema.UserMessage(t.Content))
		case statex.RoleAssistant:
			msg := &schema.Message{Role: schema.Assistant, Content: t.Content}
			for _, c := range t.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
					ID: c.ID,
					Function: schema.FunctionCall{
						Name:      c.Name,
						Arguments: c.Arguments,
					},
				})
			}
			out = append(out, msg)
		case statex.RoleTool:
			out = append(out, &schema.Message{
				Role:       schema.Tool,
				Content:    t.Content,
				ToolCallID: t.ToolCallID,
			})
		}
	}
	return out
}

func assistantTurn(msg *schema.Message) statex.Turn {
	turn := statex.Turn{Role: statex.RoleAssistant, Content: msg.Content}
	for _, c := range msg.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, statex.ToolCall{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return turn
}
