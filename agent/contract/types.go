package contract

// ProblemType categorizes what kind of issue a tool call is working on.
// Attempt counts are scoped per (problem type, subject id) pair.
type ProblemType string

const (
	ProblemRefundIssue   ProblemType = "refund_issue"
	ProblemTrackingIssue ProblemType = "tracking_issue"
	ProblemOrderInquiry  ProblemType = "order_inquiry"
	ProblemGeneral       ProblemType = "general"
)

type ToolRequest struct {
	CallID string         `json:"call_id,omitempty"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
}

// ToolResult is the structured outcome of one dispatched tool call.
// Dispatcher failures land in Error so the model can read them on the
// next turn; they are never raised past the orchestrator.
type ToolResult struct {
	CallID   string `json:"call_id,omitempty"`
	Tool     string `json:"tool"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Resolved bool   `json:"resolved,omitempty"`
}

func (r ToolResult) OK() bool {
	return r.Error == ""
}

// RefundEvent is published to the notifier when a refund changes state.
type RefundEvent struct {
	Kind     string  `json:"kind"` // "refund.completed" | "refund.requires_approval" | "refund.denied"
	RefundID string  `json:"refund_id"`
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
}
