package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Listener is called after every committed change with the new and the
// previous state.
type Listener func(next, prev State)

type subscription struct {
	id uint64
	fn Listener
}

// Store holds one cart state and is the only path through which it changes.
//
// Every operation commits atomically and operations apply in call order.
// Listeners run synchronously after the commit, outside the store lock, so
// they may read the store. Operations that change nothing notify nobody.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   []subscription
	nextID uint64
}

// New returns an empty, closed cart.
func New() *Store {
	return &Store{}
}

// FromSnapshot returns a store seeded with a copy of s. It returns an error
// wrapping ErrInvalidSnapshot when s violates the cart invariants.
func FromSnapshot(s State) (*Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Store{state: s.clone()}, nil
}

// State returns a copy of the latest committed state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// setState applies update to a private copy of the current state. When update
// reports a change, the copy is committed and listeners are notified.
func (s *Store) setState(update func(*State) bool) bool {
	s.mu.Lock()
	next := s.state.clone()
	if !update(&next) {
		s.mu.Unlock()
		return false
	}
	prev := s.state
	s.state = next
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next.clone(), prev.clone())
	}
	return true
}

// AddItem adds one unit of a product. An existing line item is incremented
// unless it already reached in.Stock; a new line item starts at quantity one
// unless in.Stock is zero. Inputs with an empty product id or a negative price
// are rejected. It reports whether the cart changed.
func (s *Store) AddItem(in AddInput) bool {
	if in.ProductID == "" || in.Price.IsNegative() {
		return false
	}
	limit, bounded := in.stockLimit()

	return s.setState(func(st *State) bool {
		if i := st.indexOf(in.ProductID); i >= 0 {
			if bounded && st.Items[i].Quantity >= limit {
				return false
			}
			st.Items[i].Quantity++
			return true
		}
		if bounded && limit == 0 {
			return false
		}
		st.Items = append(st.Items, Item{
			ProductID: in.ProductID,
			Name:      in.Name,
			Price:     in.Price,
			Image:     in.Image,
			Quantity:  1,
		})
		return true
	})
}

// RemoveItem removes the line item for productID. Absent ids are a no-op.
func (s *Store) RemoveItem(productID string) bool {
	return s.setState(func(st *State) bool {
		i := st.indexOf(productID)
		if i < 0 {
			return false
		}
		st.Items = append(st.Items[:i], st.Items[i+1:]...)
		return true
	})
}

// UpdateQuantity sets the quantity of the line item for productID. A quantity
// of zero or less removes the item. No stock bound is applied here.
func (s *Store) UpdateQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return s.RemoveItem(productID)
	}
	return s.setState(func(st *State) bool {
		i := st.indexOf(productID)
		if i < 0 || st.Items[i].Quantity == quantity {
			return false
		}
		st.Items[i].Quantity = quantity
		return true
	})
}

// ClearCart removes every line item and leaves the panel flag untouched. It
// reports whether the cart had any items.
func (s *Store) ClearCart() bool {
	return s.setState(func(st *State) bool {
		if len(st.Items) == 0 {
			return false
		}
		st.Items = nil
		return true
	})
}

// ToggleCart flips the panel flag. It always changes the cart.
func (s *Store) ToggleCart() bool {
	return s.setState(func(st *State) bool {
		st.IsOpen = !st.IsOpen
		return true
	})
}

// OpenCart shows the cart panel. It reports whether the panel was closed.
func (s *Store) OpenCart() bool { return s.setOpen(true) }

// CloseCart hides the cart panel. It reports whether the panel was open.
func (s *Store) CloseCart() bool { return s.setOpen(false) }

func (s *Store) setOpen(open bool) bool {
	return s.setState(func(st *State) bool {
		if st.IsOpen == open {
			return false
		}
		st.IsOpen = open
		return true
	})
}

// Items returns the ordered line items.
func (s *Store) Items() []Item { return Read(s, SelectItems) }

// IsOpen returns the cart panel flag.
func (s *Store) IsOpen() bool { return Read(s, SelectIsOpen) }

// TotalItems returns the number of units in the cart.
func (s *Store) TotalItems() int { return Read(s, SelectTotalItems) }

// TotalPrice returns the cart value.
func (s *Store) TotalPrice() decimal.Decimal { return Read(s, SelectTotalPrice) }

// Item returns the line item for productID.
func (s *Store) Item(productID string) (Item, bool) {
	l := Read(s, SelectItem(productID))
	return l.Item, l.Found
}

// Read applies sel to the latest committed state of s.
func Read[T any](s *Store, sel Selector[T]) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sel(s.state)
}

// Watch calls fn with the selected value whenever a committed change alters
// it according to equal. It returns the unsubscribe function.
func Watch[T any](s *Store, sel Selector[T], equal func(a, b T) bool, fn func(T)) (unsubscribe func()) {
	return s.Subscribe(func(next, prev State) {
		v := sel(next)
		if !equal(sel(prev), v) {
			fn(v)
		}
	})
}
