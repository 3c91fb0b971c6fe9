// Package admin implements the warehouse/supervisor console commands
// that drive the back-office side of the return and refund lifecycle.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
	statex "github.com/shopco/support-agent/agent/state"
	toolx "github.com/shopco/support-agent/agent/tool"
)

const Usage = `Available admin commands:
  receive_return <return_id> <good|damaged_beyond_acceptable>
  ship_return <return_id>
  approve_refund <refund_id>
  deny_refund <refund_id>
  show_orders
  show_returns
  show_refunds
  show_state [session_id]
  reset_database`

// Console executes admin commands against the ledger, through the same
// dispatcher the agent uses so every mutation goes through policy.
type Console struct {
	ledger   *ledgerx.Store
	catalog  *toolx.Catalog
	sessions statex.Store
}

func NewConsole(ledger *ledgerx.Store, catalog *toolx.Catalog, sessions statex.Store) *Console {
	return &Console{ledger: ledger, catalog: catalog, sessions: sessions}
}

// Execute parses and runs one admin command line and returns the text
// to print. sessionID is the shell's current conversation, used by
// show_state and reset_database. Unknown commands and bad arguments
// come back as an error whose message includes the usage text.
func (c *Console) Execute(ctx context.Context, sessionID string, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty admin command\n%s", Usage)
	}

	action, args := fields[0], fields[1:]
	switch action {
	case "receive_return":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: receive_return <return_id> <condition>")
		}
		return c.dispatch(ctx, toolx.ToolAdminReceiveReturn, map[string]any{
			"return_id": args[0],
			"condition": args[1],
		})

	case "ship_return":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: ship_return <return_id>")
		}
		return c.dispatch(ctx, toolx.ToolAdminShipReturn, map[string]any{"return_id": args[0]})

	case "approve_refund":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: approve_refund <refund_id>")
		}
		return c.dispatch(ctx, toolx.ToolAdminApproveRefund, map[string]any{"refund_id": args[0]})

	case "deny_refund":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: deny_refund <refund_id>")
		}
		return c.dispatch(ctx, toolx.ToolAdminDenyRefund, map[string]any{"refund_id": args[0]})

	case "show_orders":
		return c.showOrders(), nil
	case "show_returns":
		return c.showReturns(), nil
	case "show_refunds":
		return c.showRefunds(), nil

	case "show_state":
		target := sessionID
		if len(args) == 1 {
			target = args[0]
		}
		return c.showState(ctx, target)

	case "reset_database":
		c.ledger.Reset()
		// Attempt counters reference ledger records that no longer
		// exist, so the session goes with them.
		if c.sessions != nil && strings.TrimSpace(sessionID) != "" {
			if err := c.sessions.Delete(ctx, sessionID); err != nil {
				return "", fmt.Errorf("reset session state: %w", err)
			}
		}
		return "Database reset to initial state (10 sample orders)", nil

	case "help":
		return Usage, nil

	default:
		return "", fmt.Errorf("unknown admin command %q\n%s", action, Usage)
	}
}

func (c *Console) showState(ctx context.Context, sessionID string) (string, error) {
	if c.sessions == nil {
		return "", errors.New("no session store configured")
	}
	st, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return fmt.Sprintf("No state for session %s", sessionID), nil
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: %d turns, updated %s\n", st.SessionID, len(st.History), st.UpdatedAt.Format("2006-01-02 15:04:05"))
	if st.ActiveProblem != "" {
		fmt.Fprintf(&b, "  active: %s on %s\n", st.ActiveProblem, st.ActiveSubject)
	}
	if len(st.Attempts) == 0 {
		b.WriteString("  no open attempts")
	} else {
		b.WriteString("  attempts:")
		for key, count := range st.Attempts {
			fmt.Fprintf(&b, "\n    %s = %d", key, count)
		}
	}
	return b.String(), nil
}

func (c *Console) dispatch(ctx context.Context, tool string, args map[string]any) (string, error) {
	result := c.catalog.Dispatch(ctx, contractx.ToolRequest{Tool: tool, Args: args})
	if !result.OK() {
		return "", fmt.Errorf("%s failed: %s", tool, result.Error)
	}

	payload, err := json.MarshalIndent(result.Result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", tool, err)
	}
	return string(payload), nil
}

func (c *Console) showOrders() string {
	var b strings.Builder
	orders := c.ledger.Orders()
	fmt.Fprintf(&b, "Orders (%d):\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "  %s  %-18s $%8.2f  %s  %s", o.ID, o.Status, o.Total, o.CustomerID, strings.Join(o.Items, ", "))
		if o.TrackingNumber != "" {
			fmt.Fprintf(&b, "  tracking=%s", o.TrackingNumber)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) showReturns() string {
	returns := c.ledger.Returns()
	if len(returns) == 0 {
		return "No returns"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Returns (%d):\n", len(returns))
	for _, r := range returns {
		fmt.Fprintf(&b, "  %s  order=%s  %-16s initiated=%s", r.ID, r.OrderID, r.Status, r.InitiatedDate)
		if r.ReceivedDate != "" {
			fmt.Fprintf(&b, "  received=%s condition=%s", r.ReceivedDate, r.Condition)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) showRefunds() string {
	refunds := c.ledger.Refunds()
	if len(refunds) == 0 {
		return "No refunds"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Refunds (%d):\n", len(refunds))
	for _, r := range refunds {
		fmt.Fprintf(&b, "  %s  order=%s  $%8.2f  %-18s initiated=%s", r.ID, r.OrderID, r.Amount, r.Status, r.InitiatedDate)
		if r.CompletedDate != "" {
			fmt.Fprintf(&b, "  completed=%s", r.CompletedDate)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
