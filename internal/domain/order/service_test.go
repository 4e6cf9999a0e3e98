package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID    map[string]*Order
	getErr  error
	listErr error
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// --- Helpers ---

func newTestOrder(id, userID string, createdAt time.Time) *Order {
	return &Order{
		ID:        id,
		Number:    "ORD-" + id,
		UserID:    userID,
		Status:    StatusPaid,
		Total:     decimal.RequireFromString("42.00"),
		CreatedAt: createdAt,
	}
}

func newOrderRepo(orders ...*Order) *mockOrderRepo {
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &mockOrderRepo{byID: byID}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, noop.NewTracerProvider())
}

// --- Tests ---

func TestGet(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newOrderRepo(newTestOrder("o1", "alice", created))

	tests := []struct {
		name    string
		id      string
		userID  string
		wantErr bool
	}{
		{name: "owner sees order", id: "o1", userID: "alice"},
		{name: "other user gets not found", id: "o1", userID: "bob", wantErr: true},
		{name: "signed out gets not found", id: "o1", userID: "", wantErr: true},
		{name: "absent order", id: "missing", userID: "alice", wantErr: true},
		{name: "empty id", id: "", userID: "alice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(repo)

			o, err := svc.Get(context.Background(), tt.id, tt.userID)
			if tt.wantErr {
				var nfErr *NotFoundError
				require.ErrorAs(t, err, &nfErr)
				assert.Equal(t, tt.id, nfErr.OrderID)
				require.ErrorIs(t, err, ErrNotFound)
				assert.Nil(t, o)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ORD-o1", o.Number)
		})
	}
}

func TestGet_RepositoryError(t *testing.T) {
	repo := &mockOrderRepo{getErr: errors.New("connection reset")}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), "o1", "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "get order o1")
}

func TestListForUser_NewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newOrderRepo(
		newTestOrder("old", "alice", base),
		newTestOrder("new", "alice", base.Add(48*time.Hour)),
		newTestOrder("mid", "alice", base.Add(24*time.Hour)),
		newTestOrder("bobs", "bob", base.Add(72*time.Hour)),
	)
	svc := newTestService(repo)

	orders, err := svc.ListForUser(context.Background(), "alice")
	require.NoError(t, err)

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestListForUser_SignedOut(t *testing.T) {
	svc := newTestService(newOrderRepo(newTestOrder("o1", "alice", time.Now())))

	orders, err := svc.ListForUser(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListForUser_RepositoryError(t *testing.T) {
	svc := newTestService(&mockOrderRepo{listErr: errors.New("timeout")})

	_, err := svc.ListForUser(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list orders")
}
