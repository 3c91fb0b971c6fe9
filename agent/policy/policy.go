// Package policy holds the pure decision logic for the refund and
// return flows. Functions take ledger snapshot values and produce
// Transitions; they never touch the store themselves.
package policy

import (
	"fmt"
	"time"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
)

// ApprovalThreshold is the refund amount above which a supervisor must
// approve before the refund can complete.
const ApprovalThreshold = 500.0

const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged_beyond_acceptable"
)

const dateLayout = "2006-01-02"

// RefundDecision is the outcome of an initiate_refund request.
type RefundDecision struct {
	Transition ledgerx.Transition

	Refund *ledgerx.Refund
	Return *ledgerx.Return

	// Resolved means the customer's problem is settled (refund
	// completed). A return-first or approval-gated outcome is a
	// successful step but not a resolution.
	Resolved bool

	Message       string
	ShippingLabel string
}

// DecideRefund implements the core decision table: processing orders
// cancel and refund immediately, shipped/delivered orders enter the
// return-first path, anything else is an illegal transition.
func DecideRefund(order ledgerx.Order, reason string, now time.Time) (RefundDecision, error) {
	today := now.UTC().Format(dateLayout)

	switch order.Status {
	case ledgerx.OrderProcessing:
		return decideImmediateRefund(order, reason, today), nil

	case ledgerx.OrderShipped, ledgerx.OrderDelivered:
		return decideReturnFirst(order, reason, now, today), nil

	case ledgerx.OrderReturnRequested, ledgerx.OrderRefundProcessing:
		return RefundDecision{}, fmt.Errorf(
			"%w: refund already in progress for order %s (status %s)",
			contractx.ErrInvalidStateTransition, order.ID, order.Status)

	default:
		return RefundDecision{}, fmt.Errorf(
			"%w: cannot refund order %s with status %s",
			contractx.ErrInvalidStateTransition, order.ID, order.Status)
	}
}

func decideImmediateRefund(order ledgerx.Order, reason string, today string) RefundDecision {
	refund := ledgerx.Refund{
		ID:            ledgerx.RefundID(order.ID),
		OrderID:       order.ID,
		Amount:        order.Total,
		Reason:        reason,
		InitiatedDate: today,
	}

	d := RefundDecision{}
	if order.Total > ApprovalThreshold {
		refund.Status = ledgerx.RefundRequiresApproval
		d.Message = fmt.Sprintf(
			"Order cancelled. The refund of $%.2f exceeds $%.0f and is waiting for supervisor approval.",
			order.Total, ApprovalThreshold)
	} else {
		refund.Status = ledgerx.RefundCompleted
		refund.CompletedDate = today
		d.Resolved = true
		d.Message = fmt.Sprintf(
			"Order cancelled and refund of $%.2f completed. Funds will appear in 3-5 business days.",
			order.Total)
	}

	d.Refund = &refund
	d.Transition = ledgerx.Transition{
		Note: d.Message,
		Order: &ledgerx.OrderPatch{
			ID:   order.ID,
			From: []ledgerx.OrderStatus{ledgerx.OrderProcessing},
			To:   ledgerx.OrderCancelled,
		},
		CreateRefund: &refund,
	}
	return d
}

func decideReturnFirst(order ledgerx.Order, reason string, now time.Time, today string) RefundDecision {
	ret := ledgerx.Return{
		ID:            ledgerx.ReturnID(order.ID),
		OrderID:       order.ID,
		Status:        ledgerx.ReturnRequested,
		Reason:        reason,
		InitiatedDate: today,
	}

	// The label is an outcome note for the caller, not a ledger entity.
	label := fmt.Sprintf("RETURN-LABEL-%s-%s", order.ID, now.UTC().Format("20060102"))

	d := RefundDecision{
		Return:        &ret,
		ShippingLabel: label,
		Message: fmt.Sprintf(
			"Return %s initiated. Ship the item back with the provided label; the $%.2f refund is issued after we receive and inspect it.",
			ret.ID, order.Total),
	}
	d.Transition = ledgerx.Transition{
		Note: d.Message,
		Order: &ledgerx.OrderPatch{
			ID:   order.ID,
			From: []ledgerx.OrderStatus{ledgerx.OrderShipped, ledgerx.OrderDelivered},
			To:   ledgerx.OrderReturnRequested,
		},
		CreateReturn: &ret,
	}
	return d
}

// ShipDecision moves a requested return into transit.
type ShipDecision struct {
	Transition ledgerx.Transition
	Message    string
}

func DecideShipReturn(ret ledgerx.Return) (ShipDecision, error) {
	if ret.Status != ledgerx.ReturnRequested {
		return ShipDecision{}, fmt.Errorf(
			"%w: return %s is %s, only requested returns can enter transit",
			contractx.ErrInvalidStateTransition, ret.ID, ret.Status)
	}
	msg := fmt.Sprintf("Return %s is in transit back to the warehouse.", ret.ID)
	return ShipDecision{
		Message: msg,
		Transition: ledgerx.Transition{
			Note: msg,
			Return: &ledgerx.ReturnPatch{
				ID:   ret.ID,
				From: []ledgerx.ReturnStatus{ledgerx.ReturnRequested},
				To:   ledgerx.ReturnInTransit,
			},
		},
	}, nil
}

// ReceiptDecision is the outcome of the warehouse receiving a return.
type ReceiptDecision struct {
	Transition ledgerx.Transition
	Refund     *ledgerx.Refund
	Accepted   bool
	Resolved   bool
	Message    string
}

// DecideReceipt applies the receiving-side transition. A return can be
// received only from requested or in_transit; a good-condition receipt
// creates the refund, an unacceptable one rejects the return with no
// refund.
func DecideReceipt(ret ledgerx.Return, order ledgerx.Order, condition string, now time.Time) (ReceiptDecision, error) {
	switch condition {
	case ConditionGood, ConditionDamaged:
	default:
		return ReceiptDecision{}, fmt.Errorf(
			"%w: condition must be %q or %q, got %q",
			contractx.ErrValidation, ConditionGood, ConditionDamaged, condition)
	}

	switch ret.Status {
	case ledgerx.ReturnRequested, ledgerx.ReturnInTransit:
	default:
		return ReceiptDecision{}, fmt.Errorf(
			"%w: return %s is %s and cannot be received",
			contractx.ErrInvalidStateTransition, ret.ID, ret.Status)
	}

	today := now.UTC().Format(dateLayout)
	receivable := []ledgerx.ReturnStatus{ledgerx.ReturnRequested, ledgerx.ReturnInTransit}

	if condition == ConditionDamaged {
		msg := fmt.Sprintf("Return %s rejected: item damaged beyond acceptable condition. No refund issued.", ret.ID)
		return ReceiptDecision{
			Message: msg,
			Transition: ledgerx.Transition{
				Note: msg,
				Return: &ledgerx.ReturnPatch{
					ID:           ret.ID,
					From:         receivable,
					To:           ledgerx.ReturnReceivedDamaged,
					ReceivedDate: today,
					Condition:    condition,
				},
				Order: &ledgerx.OrderPatch{
					ID: ret.OrderID,
					To: ledgerx.OrderReturnRejected,
				},
			},
		}, nil
	}

	refund := ledgerx.Refund{
		ID:            ledgerx.RefundID(ret.OrderID),
		OrderID:       ret.OrderID,
		ReturnID:      ret.ID,
		Amount:        order.Total,
		Reason:        ret.Reason,
		InitiatedDate: today,
	}

	d := ReceiptDecision{Accepted: true}
	orderTo := ledgerx.OrderRefundProcessing
	if order.Total > ApprovalThreshold {
		refund.Status = ledgerx.RefundRequiresApproval
		d.Message = fmt.Sprintf(
			"Return %s received in good condition. The $%.2f refund exceeds $%.0f and awaits supervisor approval.",
			ret.ID, order.Total, ApprovalThreshold)
	} else {
		refund.Status = ledgerx.RefundCompleted
		refund.CompletedDate = today
		orderTo = ledgerx.OrderRefunded
		d.Resolved = true
		d.Message = fmt.Sprintf(
			"Return %s received and approved. Refund of $%.2f completed.",
			ret.ID, order.Total)
	}

	d.Refund = &refund
	d.Transition = ledgerx.Transition{
		Note: d.Message,
		Return: &ledgerx.ReturnPatch{
			ID:           ret.ID,
			From:         receivable,
			To:           ledgerx.ReturnReceivedGood,
			ReceivedDate: today,
			Condition:    condition,
			RefundID:     refund.ID,
		},
		Order: &ledgerx.OrderPatch{
			ID: ret.OrderID,
			To: orderTo,
		},
		CreateRefund: &refund,
	}
	return d, nil
}

// ApprovalDecision resolves a refund sitting at the approval gate.
// Approval is an explicit two-step walk: requires_approval -> approved
// -> completed, applied as two sequential transitions so the refund
// never skips the approved state.
type ApprovalDecision struct {
	Transitions []ledgerx.Transition
	Status      ledgerx.RefundStatus
	Message     string
}

func DecideApproval(refund ledgerx.Refund, approve bool, now time.Time) (ApprovalDecision, error) {
	if refund.Status != ledgerx.RefundRequiresApproval {
		return ApprovalDecision{}, fmt.Errorf(
			"%w: refund %s is %s, only requires_approval refunds can be decided",
			contractx.ErrInvalidStateTransition, refund.ID, refund.Status)
	}

	today := now.UTC().Format(dateLayout)

	if !approve {
		msg := fmt.Sprintf("Refund %s of $%.2f denied by supervisor.", refund.ID, refund.Amount)
		return ApprovalDecision{
			Status:  ledgerx.RefundDenied,
			Message: msg,
			Transitions: []ledgerx.Transition{{
				Note: msg,
				Refund: &ledgerx.RefundPatch{
					ID:   refund.ID,
					From: []ledgerx.RefundStatus{ledgerx.RefundRequiresApproval},
					To:   ledgerx.RefundDenied,
				},
			}},
		}, nil
	}

	msg := fmt.Sprintf("Refund %s of $%.2f approved and completed.", refund.ID, refund.Amount)
	complete := ledgerx.Transition{
		Note: msg,
		Refund: &ledgerx.RefundPatch{
			ID:            refund.ID,
			From:          []ledgerx.RefundStatus{ledgerx.RefundApproved},
			To:            ledgerx.RefundCompleted,
			CompletedDate: today,
		},
	}
	// Return-path refunds also settle the order row.
	if refund.ReturnID != "" {
		complete.Order = &ledgerx.OrderPatch{
			ID:   refund.OrderID,
			From: []ledgerx.OrderStatus{ledgerx.OrderRefundProcessing},
			To:   ledgerx.OrderRefunded,
		}
	}

	return ApprovalDecision{
		Status:  ledgerx.RefundCompleted,
		Message: msg,
		Transitions: []ledgerx.Transition{
			{
				Refund: &ledgerx.RefundPatch{
					ID:   refund.ID,
					From: []ledgerx.RefundStatus{ledgerx.RefundRequiresApproval},
					To:   ledgerx.RefundApproved,
				},
			},
			complete,
		},
	}, nil
}
