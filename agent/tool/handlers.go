package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/shopco/support-agent/agent/contract"
	ledgerx "github.com/shopco/support-agent/agent/ledger"
	policyx "github.com/shopco/support-agent/agent/policy"
)

func (c *Catalog) registerAll() {
	c.register(ToolCheckOrderStatus, handler{
		llmVisible: true,
		problem:    contractx.ProblemOrderInquiry,
		exec:       c.checkOrderStatus,
		info: &schema.ToolInfo{
			Name: ToolCheckOrderStatus,
			Desc: "Get the current status and details of a customer order, including any return or refund attached to it.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "The order ID (e.g., 12345). Ask the customer if you don't have it.", Required: true},
			}),
		},
	})

	c.register(ToolCheckTracking, handler{
		llmVisible: true,
		problem:    contractx.ProblemTrackingIssue,
		exec:       c.checkTracking,
		info: &schema.ToolInfo{
			Name: ToolCheckTracking,
			Desc: "Get shipment tracking details for a tracking number when the customer wants shipping updates.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"tracking_number": {Type: schema.String, Desc: "The carrier tracking number (e.g., 1Z999AA10123456784).", Required: true},
			}),
		},
	})

	c.register(ToolInitiateRefund, handler{
		llmVisible: true,
		problem:    contractx.ProblemRefundIssue,
		exec:       c.initiateRefund,
		info: &schema.ToolInfo{
			Name: ToolInitiateRefund,
			Desc: "Start a refund for an order. Processing orders are cancelled and refunded immediately; shipped or delivered orders automatically enter the return process first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "The order ID to refund.", Required: true},
				"reason":   {Type: schema.String, Desc: "Reason for the refund (e.g., 'item damaged', 'changed mind').", Required: true},
			}),
		},
	})

	c.register(ToolCheckReturnStatus, handler{
		llmVisible: true,
		problem:    contractx.ProblemRefundIssue,
		exec:       c.checkReturnStatus,
		info: &schema.ToolInfo{
			Name: ToolCheckReturnStatus,
			Desc: "Check the status of a return, including whether the item was received and the refund state.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"return_id": {Type: schema.String, Desc: "The return ID (e.g., RET-12345).", Required: true},
			}),
		},
	})

	c.register(ToolAdminReceiveReturn, handler{
		problem: contractx.ProblemRefundIssue,
		exec:    c.adminReceiveReturn,
	})
	c.register(ToolAdminShipReturn, handler{
		problem: contractx.ProblemRefundIssue,
		exec:    c.adminShipReturn,
	})
	c.register(ToolAdminApproveRefund, handler{
		problem: contractx.ProblemRefundIssue,
		exec:    c.adminDecideRefund(true),
	})
	c.register(ToolAdminDenyRefund, handler{
		problem: contractx.ProblemRefundIssue,
		exec:    c.adminDecideRefund(false),
	})
}

type OrderStatusOutput struct {
	Order  ledgerx.Order   `json:"order"`
	Return *ledgerx.Return `json:"return_info,omitempty"`
	Refund *ledgerx.Refund `json:"refund_info,omitempty"`
}

func (c *Catalog) checkOrderStatus(ctx context.Context, args map[string]any) contractx.ToolResult {
	orderID, err := stringArg(args, "order_id")
	if err != nil {
		return errorResult(err)
	}

	order, ok := c.ledger.Order(orderID)
	if !ok {
		return errorResult(fmt.Errorf("%w: order %s", contractx.ErrNotFound, orderID))
	}

	out := OrderStatusOutput{Order: order}
	if ret, ok := c.ledger.Return(ledgerx.ReturnID(orderID)); ok {
		out.Return = &ret
	}
	if refund, ok := c.ledger.Refund(ledgerx.RefundID(orderID)); ok {
		out.Refund = &refund
	}

	return contractx.ToolResult{Result: out, Resolved: true}
}

type TrackingEvent struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Event    string `json:"event"`
}

type TrackingOutput struct {
	TrackingNumber   string          `json:"tracking_number"`
	Carrier          string          `json:"carrier"`
	Status           string          `json:"status"`
	Location         string          `json:"location"`
	LastUpdate       string          `json:"last_update"`
	ExpectedDelivery string          `json:"expected_delivery"`
	History          []TrackingEvent `json:"history"`
}

// checkTracking serves canned carrier data. A production build would
// call the carrier APIs here.
func (c *Catalog) checkTracking(ctx context.Context, args map[string]any) contractx.ToolResult {
	trackingNumber, err := stringArg(args, "tracking_number")
	if err != nil {
		return errorResult(err)
	}

	return contractx.ToolResult{
		Resolved: true,
		Result: TrackingOutput{
			TrackingNumber:   trackingNumber,
			Carrier:          "FedEx",
			Status:           "In Transit",
			Location:         "Portland, OR",
			LastUpdate:       "2025-10-03 14:30",
			ExpectedDelivery: "2025-10-05",
			History: []TrackingEvent{
				{Date: "2025-10-01 09:00", Location: "Seattle, WA", Event: "Package picked up"},
				{Date: "2025-10-02 15:30", Location: "Seattle, WA", Event: "Departed facility"},
				{Date: "2025-10-03 08:15", Location: "Portland, OR", Event: "Arrived at facility"},
				{Date: "2025-10-03 14:30", Location: "Portland, OR", Event: "In transit to destination"},
			},
		},
	}
}

type RefundOutput struct {
	Message        string          `json:"message"`
	Order          ledgerx.Order   `json:"order"`
	Refund         *ledgerx.Refund `json:"refund,omitempty"`
	Return         *ledgerx.Return `json:"return,omitempty"`
	ShippingLabel  string          `json:"return_shipping_label,omitempty"`
	ReturnAddress  string          `json:"return_address,omitempty"`
	ActionRequired string          `json:"action_required,omitempty"`
}

const returnAddress = "ShopCo Returns, 123 Warehouse St, Seattle, WA 98101"

func (c *Catalog) initiateRefund(ctx context.Context, args map[string]any) contractx.ToolResult {
	orderID, err := stringArg(args, "order_id")
	if err != nil {
		return errorResult(err)
	}
	reason, err := stringArg(args, "reason")
	if err != nil {
		return errorResult(err)
	}

	order, ok := c.ledger.Order(orderID)
	if !ok {
		return errorResult(fmt.Errorf("%w: order %s", contractx.ErrNotFound, orderID))
	}

	decision, err := policyx.DecideRefund(order, reason, c.now())
	if err != nil {
		return errorResult(err)
	}
	if err := c.ledger.Apply(decision.Transition); err != nil {
		return errorResult(err)
	}

	updated, _ := c.ledger.Order(orderID)
	out := RefundOutput{
		Message: decision.Message,
		Order:   updated,
		Refund:  decision.Refund,
		Return:  decision.Return,
	}
	if decision.Return != nil {
		out.ShippingLabel = decision.ShippingLabel
		out.ReturnAddress = returnAddress
	}
	if decision.Refund != nil {
		switch decision.Refund.Status {
		case ledgerx.RefundCompleted:
			c.publish(ctx, contractx.RefundEvent{
				Kind:     "refund.completed",
				RefundID: decision.Refund.ID,
				OrderID:  orderID,
				Amount:   decision.Refund.Amount,
			})
		case ledgerx.RefundRequiresApproval:
			out.ActionRequired = "escalate_to_supervisor"
			c.publish(ctx, contractx.RefundEvent{
				Kind:     "refund.requires_approval",
				RefundID: decision.Refund.ID,
				OrderID:  orderID,
				Amount:   decision.Refund.Amount,
			})
		}
	}

	return contractx.ToolResult{Result: out, Resolved: decision.Resolved}
}

type ReturnStatusOutput struct {
	Return     ledgerx.Return  `json:"return"`
	OrderTotal float64         `json:"order_total,omitempty"`
	Refund     *ledgerx.Refund `json:"refund_info,omitempty"`
}

func (c *Catalog) checkReturnStatus(ctx context.Context, args map[string]any) contractx.ToolResult {
	returnID, err := stringArg(args, "return_id")
	if err != nil {
		return errorResult(err)
	}

	ret, ok := c.ledger.Return(returnID)
	if !ok {
		return errorResult(fmt.Errorf("%w: return %s", contractx.ErrNotFound, returnID))
	}

	out := ReturnStatusOutput{Return: ret}
	if order, ok := c.ledger.Order(ret.OrderID); ok {
		out.OrderTotal = order.Total
	}
	if refund, ok := c.ledger.Refund(ledgerx.RefundID(ret.OrderID)); ok {
		out.Refund = &refund
	}

	return contractx.ToolResult{Result: out, Resolved: true}
}

type ReceiptOutput struct {
	Message   string          `json:"message"`
	Return    ledgerx.Return  `json:"return"`
	Condition string          `json:"condition"`
	Refund    *ledgerx.Refund `json:"refund,omitempty"`
}

func (c *Catalog) adminReceiveReturn(ctx context.Context, args map[string]any) contractx.ToolResult {
	returnID, err := stringArg(args, "return_id")
	if err != nil {
		return errorResult(err)
	}
	condition, err := stringArg(args, "condition")
	if err != nil {
		return errorResult(err)
	}

	ret, ok := c.ledger.Return(returnID)
	if !ok {
		return errorResult(fmt.Errorf("%w: return %s", contractx.ErrNotFound, returnID))
	}
	order, ok := c.ledger.Order(ret.OrderID)
	if !ok {
		return errorResult(fmt.Errorf("%w: order %s", contractx.ErrNotFound, ret.OrderID))
	}

	decision, err := policyx.DecideReceipt(ret, order, condition, c.now())
	if err != nil {
		return errorResult(err)
	}
	if err := c.ledger.Apply(decision.Transition); err != nil {
		return errorResult(err)
	}

	if decision.Refund != nil {
		kind := "refund.requires_approval"
		if decision.Refund.Status == ledgerx.RefundCompleted {
			kind = "refund.completed"
		}
		c.publish(ctx, contractx.RefundEvent{
			Kind:     kind,
			RefundID: decision.Refund.ID,
			OrderID:  ret.OrderID,
			Amount:   decision.Refund.Amount,
		})
	}

	updated, _ := c.ledger.Return(returnID)
	return contractx.ToolResult{
		Resolved: decision.Resolved,
		Result: ReceiptOutput{
			Message:   decision.Message,
			Return:    updated,
			Condition: condition,
			Refund:    decision.Refund,
		},
	}
}

type ShipReturnOutput struct {
	Message string         `json:"message"`
	Return  ledgerx.Return `json:"return"`
}

func (c *Catalog) adminShipReturn(ctx context.Context, args map[string]any) contractx.ToolResult {
	returnID, err := stringArg(args, "return_id")
	if err != nil {
		return errorResult(err)
	}

	ret, ok := c.ledger.Return(returnID)
	if !ok {
		return errorResult(fmt.Errorf("%w: return %s", contractx.ErrNotFound, returnID))
	}

	decision, err := policyx.DecideShipReturn(ret)
	if err != nil {
		return errorResult(err)
	}
	if err := c.ledger.Apply(decision.Transition); err != nil {
		return errorResult(err)
	}

	updated, _ := c.ledger.Return(returnID)
	return contractx.ToolResult{
		Result: ShipReturnOutput{Message: decision.Message, Return: updated},
	}
}

type ApprovalOutput struct {
	Message string         `json:"message"`
	Refund  ledgerx.Refund `json:"refund"`
}

func (c *Catalog) adminDecideRefund(approve bool) func(context.Context, map[string]any) contractx.ToolResult {
	return func(ctx context.Context, args map[string]any) contractx.ToolResult {
		refundID, err := stringArg(args, "refund_id")
		if err != nil {
			return errorResult(err)
		}

		refund, ok := c.ledger.Refund(refundID)
		if !ok {
			return errorResult(fmt.Errorf("%w: refund %s", contractx.ErrNotFound, refundID))
		}

		decision, err := policyx.DecideApproval(refund, approve, c.now())
		if err != nil {
			return errorResult(err)
		}
		for _, t := range decision.Transitions {
			if err := c.ledger.Apply(t); err != nil {
				return errorResult(err)
			}
		}

		kind := "refund.denied"
		if decision.Status == ledgerx.RefundCompleted {
			kind = "refund.completed"
		}
		c.publish(ctx, contractx.RefundEvent{
			Kind:     kind,
			RefundID: refund.ID,
			OrderID:  refund.OrderID,
			Amount:   refund.Amount,
		})

		updated, _ := c.ledger.Refund(refundID)
		return contractx.ToolResult{
			Resolved: decision.Status == ledgerx.RefundCompleted,
			Result:   ApprovalOutput{Message: decision.Message, Refund: updated},
		}
	}
}
