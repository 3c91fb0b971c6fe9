package state

import (
	"testing"
	"time"

	contractx "github.com/shopco/support-agent/agent/contract"
)

var testNow = time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

func TestRecordAttemptAndStuck(t *testing.T) {
	st := NewSessionState("sess-1", testNow)

	if st.IsStuck(contractx.ProblemRefundIssue, "12345") {
		t.Fatal("fresh state must not be stuck")
	}

	for i := 1; i <= StuckThreshold; i++ {
		got := st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
		if got != i {
			t.Fatalf("attempt %d recorded as %d", i, got)
		}
	}

	if !st.IsStuck(contractx.ProblemRefundIssue, "12345") {
		t.Fatalf("%d attempts must be stuck", StuckThreshold)
	}
	if st.ActiveProblem != contractx.ProblemRefundIssue || st.ActiveSubject != "12345" {
		t.Fatalf("active context not set: %s/%s", st.ActiveProblem, st.ActiveSubject)
	}
}

func TestAttemptIsolationAcrossSubjects(t *testing.T) {
	st := NewSessionState("sess-1", testNow)

	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")

	if st.AttemptCount(contractx.ProblemRefundIssue, "67890") != 0 {
		t.Fatal("attempts on one order must not bleed into another")
	}
	if st.IsStuck(contractx.ProblemRefundIssue, "67890") {
		t.Fatal("other order must not be stuck")
	}
	if st.AttemptCount(contractx.ProblemTrackingIssue, "12345") != 0 {
		t.Fatal("attempts are scoped per problem type too")
	}
}

func TestTemperatureSelection(t *testing.T) {
	st := NewSessionState("sess-1", testNow)

	if got := st.Temperature(); got != TemperatureDefault {
		t.Fatalf("no active context: want %.1f, got %.1f", TemperatureDefault, got)
	}

	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	if got := st.Temperature(); got != TemperatureDefault {
		t.Fatalf("below threshold: want %.1f, got %.1f", TemperatureDefault, got)
	}

	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	if got := st.Temperature(); got != TemperatureStuck {
		t.Fatalf("stuck: want %.1f, got %.1f", TemperatureStuck, got)
	}
}

func TestResetProblemClearsCounter(t *testing.T) {
	st := NewSessionState("sess-1", testNow)

	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")
	st.RecordAttempt(contractx.ProblemTrackingIssue, "TRACK1")

	st.ResetProblem(contractx.ProblemRefundIssue, "12345")

	if st.AttemptCount(contractx.ProblemRefundIssue, "12345") != 0 {
		t.Fatal("reset must clear the counter")
	}
	if st.AttemptCount(contractx.ProblemTrackingIssue, "TRACK1") != 1 {
		t.Fatal("reset must not touch other counters")
	}
}

func TestResetAllKeepsHistory(t *testing.T) {
	st := NewSessionState("sess-1", testNow)
	st.AppendTurn(Turn{Role: RoleUser, Content: "hello"})
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")

	st.ResetAll()

	if len(st.Attempts) != 0 || st.ActiveProblem != "" || st.ActiveSubject != "" {
		t.Fatalf("counters not cleared: %+v", st)
	}
	if len(st.History) != 1 {
		t.Fatal("history must survive a counter reset")
	}
}

func TestValidate(t *testing.T) {
	var nilState *SessionState
	if err := nilState.Validate(); err != ErrNilSessionState {
		t.Fatalf("nil state: got %v", err)
	}

	st := NewSessionState("  ", testNow)
	if err := st.Validate(); err != ErrInvalidSession {
		t.Fatalf("blank id: got %v", err)
	}

	st = NewSessionState("sess-1", testNow)
	st.Attempts["refund_issue:12345"] = -1
	if err := st.Validate(); err == nil {
		t.Fatal("negative counter must fail validation")
	}
}

func TestCloneIsDeep(t *testing.T) {
	st := NewSessionState("sess-1", testNow)
	st.AppendTurn(Turn{
		Role:      RoleAssistant,
		ToolCalls: []ToolCall{{ID: "call-1", Name: "check_order_status", Arguments: `{"order_id":"12345"}`}},
	})
	st.RecordAttempt(contractx.ProblemRefundIssue, "12345")

	clone := st.Clone()
	clone.History[0].ToolCalls[0].Name = "mutated"
	clone.Attempts["refund_issue:12345"] = 99
	clone.AppendTurn(Turn{Role: RoleUser, Content: "extra"})

	if st.History[0].ToolCalls[0].Name != "check_order_status" {
		t.Fatal("tool calls aliased between clone and original")
	}
	if st.Attempts["refund_issue:12345"] != 1 {
		t.Fatal("attempts aliased between clone and original")
	}
	if len(st.History) != 1 {
		t.Fatal("history aliased between clone and original")
	}
}
