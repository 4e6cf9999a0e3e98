package order

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when an order does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("order not found")

// NotFoundError identifies the order that could not be found.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// Is reports ErrNotFound as equivalent.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Service encapsulates order lookup rules.
type Service struct {
	orders Repository
	tracer trace.Tracer
}

// NewService creates an order Service.
func NewService(orders Repository, tp trace.TracerProvider) *Service {
	return &Service{
		orders: orders,
		tracer: tp.Tracer("storefront/order"),
	}
}

// Get returns the order with the given id when it belongs to userID.
//
// Absent orders, orders owned by somebody else and signed-out callers all
// yield a NotFoundError.
func (s *Service) Get(ctx context.Context, id, userID string) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Get", trace.WithAttributes(
		attribute.String("order.id", id),
	))
	defer func() {
		if rerr != nil && !errors.Is(rerr, ErrNotFound) {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if id == "" || userID == "" {
		return nil, &NotFoundError{OrderID: id}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{OrderID: id}
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	if o.UserID != userID {
		return nil, &NotFoundError{OrderID: id}
	}
	return o, nil
}

// ListForUser returns the orders of userID, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) (_ []Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.ListForUser")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if userID == "" {
		return nil, nil
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	slices.SortStableFunc(orders, func(a, b Order) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	span.SetAttributes(attribute.Int("order.count", len(orders)))
	return orders, nil
}
