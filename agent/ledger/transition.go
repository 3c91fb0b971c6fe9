package ledger

// Transition is a whole-or-nothing mutation computed by the policy
// engine. Each patch carries the statuses it expects to find, so a
// transition raced by another writer fails instead of half-applying.
type Transition struct {
	Note string

	Order        *OrderPatch
	CreateReturn *Return
	Return       *ReturnPatch
	CreateRefund *Refund
	Refund       *RefundPatch
}

type OrderPatch struct {
	ID   string
	From []OrderStatus
	To   OrderStatus
}

type ReturnPatch struct {
	ID           string
	From         []ReturnStatus
	To           ReturnStatus
	ReceivedDate string
	Condition    string
	RefundID     string
}

type RefundPatch struct {
	ID            string
	From          []RefundStatus
	To            RefundStatus
	CompletedDate string
}

func statusAllowed[T comparable](current T, allowed []T) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if s == current {
			return true
		}
	}
	return false
}
