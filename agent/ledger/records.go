package ledger

import "strings"

type OrderStatus string

const (
	// Seedable statuses.
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"

	// Statuses produced only by policy transitions.
	OrderCancelled        OrderStatus = "cancelled"
	OrderReturnRequested  OrderStatus = "return_requested"
	OrderRefundProcessing OrderStatus = "refund_processing"
	OrderReturnRejected   OrderStatus = "return_rejected"
	OrderRefunded         OrderStatus = "refunded"
)

type ReturnStatus string

const (
	ReturnRequested       ReturnStatus = "requested"
	ReturnInTransit       ReturnStatus = "in_transit"
	ReturnReceivedGood    ReturnStatus = "received_good"
	ReturnReceivedDamaged ReturnStatus = "received_damaged"
	ReturnRejected        ReturnStatus = "rejected"
)

// Terminal reports whether the return can no longer change state.
func (s ReturnStatus) Terminal() bool {
	switch s {
	case ReturnReceivedGood, ReturnReceivedDamaged, ReturnRejected:
		return true
	}
	return false
}

type RefundStatus string

const (
	RefundPending          RefundStatus = "pending"
	RefundRequiresApproval RefundStatus = "requires_approval"
	RefundApproved         RefundStatus = "approved"
	RefundCompleted        RefundStatus = "completed"
	RefundDenied           RefundStatus = "denied"
)

type Order struct {
	ID               string      `json:"order_id"`
	Status           OrderStatus `json:"status"`
	Items            []string    `json:"items"`
	OrderDate        string      `json:"order_date"`
	ShippedDate      string      `json:"shipped_date,omitempty"`
	DeliveredDate    string      `json:"delivered_date,omitempty"`
	ExpectedDelivery string      `json:"expected_delivery"`
	TrackingNumber   string      `json:"tracking_number,omitempty"`
	Total            float64     `json:"total"`
	CustomerID       string      `json:"customer_id"`
}

type Return struct {
	ID            string       `json:"return_id"`
	OrderID       string       `json:"order_id"`
	Status        ReturnStatus `json:"status"`
	Reason        string       `json:"reason"`
	InitiatedDate string       `json:"initiated_date"`
	ReceivedDate  string       `json:"received_date,omitempty"`
	Condition     string       `json:"inspection_result,omitempty"`
	RefundID      string       `json:"refund_id,omitempty"`
}

type Refund struct {
	ID            string       `json:"refund_id"`
	OrderID       string       `json:"order_id"`
	ReturnID      string       `json:"return_id,omitempty"`
	Status        RefundStatus `json:"status"`
	Amount        float64      `json:"amount"`
	Reason        string       `json:"reason"`
	InitiatedDate string       `json:"initiated_date"`
	CompletedDate string       `json:"completed_date,omitempty"`
}

const (
	returnIDPrefix = "RET-"
	refundIDPrefix = "REF-"
)

// ReturnID derives the return identifier for an order. Returns are
// keyed by their owning order, one return per order.
func ReturnID(orderID string) string {
	return returnIDPrefix + orderID
}

func RefundID(orderID string) string {
	return refundIDPrefix + orderID
}

// OrderIDFromSubject strips the return prefix so attempt tracking keys
// stay scoped to the order regardless of which identifier the model
// passed in.
func OrderIDFromSubject(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), returnIDPrefix)
}
