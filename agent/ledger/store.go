package ledger

import (
	"fmt"
	"sort"
	"sync"

	contractx "github.com/shopco/support-agent/agent/contract"
)

// Store holds the order/return/refund ledger for the lifetime of the
// process. Reads return copies; all writes go through Apply so a
// transition lands atomically under a single lock.
type Store struct {
	mu      sync.RWMutex
	orders  map[string]*Order
	returns map[string]*Return
	refunds map[string]*Refund
}

func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops every record and reconstructs the ten seed orders.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[string]*Order, len(seedOrders))
	s.returns = make(map[string]*Return)
	s.refunds = make(map[string]*Refund)
	for _, o := range seedOrders {
		order := cloneOrder(&o)
		s.orders[order.ID] = &order
	}
}

// cloneOrder copies the record including its Items backing array, so
// neither seedOrders nor a caller's snapshot ever aliases store memory.
func cloneOrder(o *Order) Order {
	out := *o
	out.Items = append([]string(nil), o.Items...)
	return out
}

func (s *Store) Order(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, false
	}
	return cloneOrder(o), true
}

func (s *Store) Return(id string) (Return, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.returns[id]
	if !ok {
		return Return{}, false
	}
	return *r, true
}

func (s *Store) Refund(id string) (Refund, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refunds[id]
	if !ok {
		return Refund{}, false
	}
	return *r, true
}

func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Returns() []Return {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Return, 0, len(s.returns))
	for _, r := range s.returns {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Refunds() []Refund {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Refund, 0, len(s.refunds))
	for _, r := range s.refunds {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutOrder inserts or replaces an order outside the policy flow.
// Seed/reset and tests use it; conversational paths never do.
func (s *Store) PutOrder(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := cloneOrder(&o)
	s.orders[order.ID] = &order
}

// Apply validates every patch in the transition against current
// statuses and applies them under one lock. Either the whole
// transition lands or the ledger is untouched.
func (s *Store) Apply(t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validation pass first; nothing is mutated until it clears.
	var order *Order
	if t.Order != nil {
		o, ok := s.orders[t.Order.ID]
		if !ok {
			return fmt.Errorf("%w: order %s", contractx.ErrNotFound, t.Order.ID)
		}
		if !statusAllowed(o.Status, t.Order.From) {
			return fmt.Errorf("%w: order %s is %s", contractx.ErrInvalidStateTransition, o.ID, o.Status)
		}
		order = o
	}

	if t.CreateReturn != nil {
		if _, exists := s.returns[t.CreateReturn.ID]; exists {
			return fmt.Errorf("%w: return %s already exists", contractx.ErrInvalidStateTransition, t.CreateReturn.ID)
		}
	}

	var ret *Return
	if t.Return != nil {
		r, ok := s.returns[t.Return.ID]
		if !ok {
			return fmt.Errorf("%w: return %s", contractx.ErrNotFound, t.Return.ID)
		}
		if !statusAllowed(r.Status, t.Return.From) {
			return fmt.Errorf("%w: return %s is %s", contractx.ErrInvalidStateTransition, r.ID, r.Status)
		}
		ret = r
	}

	if t.CreateRefund != nil {
		if _, exists := s.refunds[t.CreateRefund.ID]; exists {
			return fmt.Errorf("%w: refund %s already exists", contractx.ErrInvalidStateTransition, t.CreateRefund.ID)
		}
	}

	var refund *Refund
	if t.Refund != nil {
		r, ok := s.refunds[t.Refund.ID]
		if !ok {
			// The refund may be created by this same transition.
			if t.CreateRefund == nil || t.CreateRefund.ID != t.Refund.ID {
				return fmt.Errorf("%w: refund %s", contractx.ErrNotFound, t.Refund.ID)
			}
		} else {
			if !statusAllowed(r.Status, t.Refund.From) {
				return fmt.Errorf("%w: refund %s is %s", contractx.ErrInvalidStateTransition, r.ID, r.Status)
			}
			refund = r
		}
	}

	// Mutation pass.
	if order != nil {
		order.Status = t.Order.To
	}
	if t.CreateReturn != nil {
		r := *t.CreateReturn
		s.returns[r.ID] = &r
	}
	if ret != nil {
		ret.Status = t.Return.To
		if t.Return.ReceivedDate != "" {
			ret.ReceivedDate = t.Return.ReceivedDate
		}
		if t.Return.Condition != "" {
			ret.Condition = t.Return.Condition
		}
		if t.Return.RefundID != "" {
			ret.RefundID = t.Return.RefundID
		}
	}
	if t.CreateRefund != nil {
		r := *t.CreateRefund
		s.refunds[r.ID] = &r
		if refund == nil && t.Refund != nil && t.Refund.ID == r.ID {
			refund = s.refunds[r.ID]
		}
	}
	if refund != nil && t.Refund != nil {
		refund.Status = t.Refund.To
		if t.Refund.CompletedDate != "" {
			refund.CompletedDate = t.Refund.CompletedDate
		}
	}

	return nil
}
