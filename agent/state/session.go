package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/shopco/support-agent/agent/contract"
)

const (
	// StuckThreshold is the attempt count at which a problem is
	// considered stuck and sampling temperature is raised.
	StuckThreshold = 3

	TemperatureDefault float32 = 0.7
	TemperatureStuck   float32 = 1.0
)

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one entry in the append-only conversation history. Assistant
// turns may carry tool calls; tool turns carry the result of exactly
// one call.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// SessionState is the per-conversation source of truth: the history log
// plus the attempt counters that drive temperature selection.
type SessionState struct {
	SessionID string `json:"session_id"`

	History []Turn `json:"history,omitempty"`

	// Attempts is keyed "<problem>:<subject>". Counters on one key
	// never affect another.
	Attempts map[string]int `json:"attempts,omitempty"`

	ActiveProblem contractx.ProblemType `json:"active_problem,omitempty"`
	ActiveSubject string                `json:"active_subject,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Attempts:  make(map[string]int, 4),
		UpdatedAt: now.UTC(),
	}
}

func attemptKey(problem contractx.ProblemType, subject string) string {
	return string(problem) + ":" + subject
}

func (s *SessionState) EnsureAttemptsMap() {
	if s.Attempts == nil {
		s.Attempts = make(map[string]int, 4)
	}
}

func (s *SessionState) AppendTurn(t Turn) {
	s.History = append(s.History, t)
}

// RecordAttempt increments the counter for (problem, subject) and makes
// that pair the active context. Returns the new count.
func (s *SessionState) RecordAttempt(problem contractx.ProblemType, subject string) int {
	s.EnsureAttemptsMap()
	key := attemptKey(problem, subject)
	s.Attempts[key]++
	s.ActiveProblem = problem
	s.ActiveSubject = subject
	return s.Attempts[key]
}

func (s *SessionState) AttemptCount(problem contractx.ProblemType, subject string) int {
	if s.Attempts == nil {
		return 0
	}
	return s.Attempts[attemptKey(problem, subject)]
}

func (s *SessionState) IsStuck(problem contractx.ProblemType, subject string) bool {
	return s.AttemptCount(problem, subject) >= StuckThreshold
}

// TemperatureFor derives the sampling temperature for a context: 1.0
// once stuck, 0.7 otherwise.
func (s *SessionState) TemperatureFor(problem contractx.ProblemType, subject string) float32 {
	if s.IsStuck(problem, subject) {
		return TemperatureStuck
	}
	return TemperatureDefault
}

// Temperature is TemperatureFor applied to the active context.
func (s *SessionState) Temperature() float32 {
	if s.ActiveProblem == "" || s.ActiveSubject == "" {
		return TemperatureDefault
	}
	return s.TemperatureFor(s.ActiveProblem, s.ActiveSubject)
}

// ResetProblem clears the counter for a resolved (problem, subject).
func (s *SessionState) ResetProblem(problem contractx.ProblemType, subject string) {
	if s.Attempts == nil {
		return
	}
	delete(s.Attempts, attemptKey(problem, subject))
}

// ResetAll clears every counter and the active context. History stays.
func (s *SessionState) ResetAll() {
	s.Attempts = make(map[string]int, 4)
	s.ActiveProblem = ""
	s.ActiveSubject = ""
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for key, count := range s.Attempts {
		if count < 0 {
			return fmt.Errorf("attempt count for %q is negative", key)
		}
	}
	return nil
}

// Clone deep-copies the state so stores never hand out aliased memory.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		for i, t := range s.History {
			turn := t
			if t.ToolCalls != nil {
				turn.ToolCalls = append([]ToolCall(nil), t.ToolCalls...)
			}
			out.History[i] = turn
		}
	}
	if s.Attempts != nil {
		out.Attempts = make(map[string]int, len(s.Attempts))
		for k, v := range s.Attempts {
			out.Attempts[k] = v
		}
	}
	return &out
}
