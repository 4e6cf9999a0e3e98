package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func chair() AddInput {
	return AddInput{ProductID: "chair", Name: "Oak Chair", Price: d("10"), Image: "chair.jpg"}
}

func lamp() AddInput {
	return AddInput{ProductID: "lamp", Name: "Desk Lamp", Price: d("5")}
}

func productIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return ids
}

func TestNew_EmptyAndClosed(t *testing.T) {
	s := New()

	assert.Empty(t, s.Items())
	assert.False(t, s.IsOpen())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, decimal.Zero.Equal(s.TotalPrice()))
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name      string
		adds      []AddInput
		wantQty   map[string]int
		wantOrder []string
	}{
		{
			name:      "new product starts at one",
			adds:      []AddInput{chair()},
			wantQty:   map[string]int{"chair": 1},
			wantOrder: []string{"chair"},
		},
		{
			name:      "same product twice accumulates",
			adds:      []AddInput{chair(), chair()},
			wantQty:   map[string]int{"chair": 2},
			wantOrder: []string{"chair"},
		},
		{
			name:      "stock of one caps quantity",
			adds:      []AddInput{chair().WithStock(1), chair().WithStock(1)},
			wantQty:   map[string]int{"chair": 1},
			wantOrder: []string{"chair"},
		},
		{
			name:      "stock of zero rejects new product",
			adds:      []AddInput{chair().WithStock(0)},
			wantQty:   map[string]int{},
			wantOrder: []string{},
		},
		{
			name:      "stock of zero is a no-op for existing item",
			adds:      []AddInput{chair(), chair().WithStock(0)},
			wantQty:   map[string]int{"chair": 1},
			wantOrder: []string{"chair"},
		},
		{
			name:      "negative stock is unbounded",
			adds:      []AddInput{chair().WithStock(-1), chair().WithStock(-1)},
			wantQty:   map[string]int{"chair": 2},
			wantOrder: []string{"chair"},
		},
		{
			name:      "insertion order is preserved",
			adds:      []AddInput{lamp(), chair(), lamp()},
			wantQty:   map[string]int{"lamp": 2, "chair": 1},
			wantOrder: []string{"lamp", "chair"},
		},
		{
			name:      "empty product id is rejected",
			adds:      []AddInput{{Name: "ghost", Price: d("1")}},
			wantQty:   map[string]int{},
			wantOrder: []string{},
		},
		{
			name:      "negative price is rejected",
			adds:      []AddInput{{ProductID: "bad", Price: d("-1")}},
			wantQty:   map[string]int{},
			wantOrder: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, in := range tt.adds {
				s.AddItem(in)
			}

			items := s.Items()
			assert.Equal(t, tt.wantOrder, productIDs(items))
			for _, item := range items {
				assert.Equal(t, tt.wantQty[item.ProductID], item.Quantity, item.ProductID)
			}
		})
	}
}

func TestAddItem_KeepsFirstSnapshot(t *testing.T) {
	s := New()
	s.AddItem(chair())

	renamed := chair()
	renamed.Name = "Renamed Chair"
	renamed.Price = d("99")
	require.True(t, s.AddItem(renamed))

	item, ok := s.Item("chair")
	require.True(t, ok)
	assert.Equal(t, "Oak Chair", item.Name)
	assert.True(t, d("10").Equal(item.Price))
	assert.Equal(t, 2, item.Quantity)
}

func TestAddItem_ReportsChange(t *testing.T) {
	s := New()
	assert.True(t, s.AddItem(chair().WithStock(1)))
	assert.False(t, s.AddItem(chair().WithStock(1)))
	assert.False(t, s.AddItem(lamp().WithStock(0)))
}

func TestAddItem_NeverDuplicates(t *testing.T) {
	s := New()
	inputs := []AddInput{chair(), lamp(), chair().WithStock(3), lamp().WithStock(0), chair(), lamp()}
	for range 5 {
		for _, in := range inputs {
			s.AddItem(in)
		}
	}

	seen := make(map[string]bool)
	for _, item := range s.Items() {
		require.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID)
		seen[item.ProductID] = true
	}
}

func TestRemoveItem(t *testing.T) {
	s := New()
	s.AddItem(chair())
	s.AddItem(lamp())

	assert.True(t, s.RemoveItem("chair"))
	assert.False(t, s.RemoveItem("chair"))
	assert.Equal(t, []string{"lamp"}, productIDs(s.Items()))

	assert.False(t, s.RemoveItem("missing"))
	assert.Equal(t, []string{"lamp"}, productIDs(s.Items()))
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantQty  int
		wantGone bool
	}{
		{name: "sets quantity", quantity: 7, wantQty: 7},
		{name: "zero removes", quantity: 0, wantGone: true},
		{name: "negative removes", quantity: -1, wantGone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.AddItem(chair())

			s.UpdateQuantity("chair", tt.quantity)

			item, ok := s.Item("chair")
			if tt.wantGone {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantQty, item.Quantity)
		})
	}
}

func TestUpdateQuantity_IgnoresStock(t *testing.T) {
	s := New()
	s.AddItem(chair().WithStock(1))

	assert.True(t, s.UpdateQuantity("chair", 50))
	item, _ := s.Item("chair")
	assert.Equal(t, 50, item.Quantity)
}

func TestUpdateQuantity_AbsentIsNoop(t *testing.T) {
	s := New()
	s.AddItem(chair())

	assert.False(t, s.UpdateQuantity("missing", 3))
	assert.False(t, s.UpdateQuantity("missing", 0))
	assert.Equal(t, []string{"chair"}, productIDs(s.Items()))
}

func TestTotals(t *testing.T) {
	s, err := FromSnapshot(State{Items: []Item{
		{ProductID: "a", Name: "A", Price: d("10"), Quantity: 2},
		{ProductID: "b", Name: "B", Price: d("5"), Quantity: 1},
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalItems())
	assert.True(t, d("25").Equal(s.TotalPrice()), "got %s", s.TotalPrice())
}

func TestTotals_DecimalPrices(t *testing.T) {
	s := New()
	s.AddItem(AddInput{ProductID: "a", Price: d("0.10")})
	s.AddItem(AddInput{ProductID: "a", Price: d("0.10")})
	s.AddItem(AddInput{ProductID: "b", Price: d("0.20")})

	assert.True(t, d("0.40").Equal(s.TotalPrice()), "got %s", s.TotalPrice())
}

func TestOpenClose(t *testing.T) {
	s := New()

	assert.False(t, s.CloseCart(), "already closed")
	assert.False(t, s.IsOpen())

	assert.True(t, s.OpenCart())
	assert.False(t, s.OpenCart(), "already open")
	assert.True(t, s.IsOpen())

	assert.True(t, s.ToggleCart())
	assert.False(t, s.IsOpen())

	assert.True(t, s.ToggleCart())
	assert.True(t, s.IsOpen())
}

func TestClearCart_PreservesOpenFlag(t *testing.T) {
	s := New()
	s.AddItem(chair())
	s.OpenCart()

	assert.True(t, s.ClearCart())
	assert.False(t, s.ClearCart(), "already empty")

	assert.Empty(t, s.Items())
	assert.True(t, s.IsOpen())
}

func TestInstanceIsolation(t *testing.T) {
	a := New()
	b := New()

	a.AddItem(chair())
	a.OpenCart()

	assert.Empty(t, b.Items())
	assert.False(t, b.IsOpen())
}

func TestFromSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{
			name: "valid",
			state: State{IsOpen: true, Items: []Item{
				{ProductID: "a", Price: d("1"), Quantity: 1},
			}},
		},
		{
			name:  "empty",
			state: State{},
		},
		{
			name: "duplicate product",
			state: State{Items: []Item{
				{ProductID: "a", Price: d("1"), Quantity: 1},
				{ProductID: "a", Price: d("1"), Quantity: 2},
			}},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			state:   State{Items: []Item{{ProductID: "a", Price: d("1")}}},
			wantErr: true,
		},
		{
			name:    "negative price",
			state:   State{Items: []Item{{ProductID: "a", Price: d("-1"), Quantity: 1}}},
			wantErr: true,
		},
		{
			name:    "empty product id",
			state:   State{Items: []Item{{Price: d("1"), Quantity: 1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromSnapshot(tt.state)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSnapshot)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.state.IsOpen, s.IsOpen())
			assert.Len(t, s.Items(), len(tt.state.Items))
		})
	}
}

func TestFromSnapshot_DoesNotAliasInput(t *testing.T) {
	snapshot := State{Items: []Item{{ProductID: "a", Price: d("1"), Quantity: 1}}}
	s, err := FromSnapshot(snapshot)
	require.NoError(t, err)

	snapshot.Items[0].Quantity = 99
	item, _ := s.Item("a")
	assert.Equal(t, 1, item.Quantity)
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := New()
	s.AddItem(chair())

	items := s.Items()
	items[0].Quantity = 42

	item, _ := s.Item("chair")
	assert.Equal(t, 1, item.Quantity)
}

func TestSubscribe(t *testing.T) {
	s := New()

	var calls []State
	unsubscribe := s.Subscribe(func(next, _ State) {
		calls = append(calls, next)
	})

	s.AddItem(chair())
	s.OpenCart()
	s.OpenCart()        // no change
	s.RemoveItem("nop") // no change
	s.ClearCart()
	s.ClearCart() // no change

	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Items, 1)
	assert.True(t, calls[1].IsOpen)
	assert.Empty(t, calls[2].Items)

	unsubscribe()
	unsubscribe()
	s.ToggleCart()
	assert.Len(t, calls, 3)
}

func TestSubscribe_ReceivesPrevious(t *testing.T) {
	s := New()
	s.AddItem(chair())

	var prevQty, nextQty int
	s.Subscribe(func(next, prev State) {
		prevQty = SelectTotalItems(prev)
		nextQty = SelectTotalItems(next)
	})

	s.AddItem(chair())
	assert.Equal(t, 1, prevQty)
	assert.Equal(t, 2, nextQty)
}

func TestSubscribe_ListenerCanReadStore(t *testing.T) {
	s := New()

	var seen int
	s.Subscribe(func(_, _ State) {
		seen = s.TotalItems()
	})

	s.AddItem(chair())
	assert.Equal(t, 1, seen)
}

func TestWatch_OnlyFiresOnSelectedChange(t *testing.T) {
	s := New()

	var counts []int
	stop := Watch(s, SelectTotalItems, func(a, b int) bool { return a == b }, func(v int) {
		counts = append(counts, v)
	})
	defer stop()

	s.AddItem(chair())
	s.ToggleCart() // count unchanged
	s.AddItem(chair())
	s.UpdateQuantity("chair", 2) // already 2

	assert.Equal(t, []int{1, 2}, counts)
}
