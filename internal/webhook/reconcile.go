package webhook

import (
	"context"
	"errors"
	"fmt"

	"vbank-adapter/internal/gateway"
	"vbank-adapter/internal/logger"

	"go.uber.org/zap"
)

var ErrOrderMismatch = errors.New("notification does not match gateway order")

// OrderQuerier is the part of the gateway client a Reconciler needs.
type OrderQuerier interface {
	QueryOrder(ctx context.Context, req gateway.QueryOrderRequest) (*gateway.Response[gateway.Order], error)
}

// Reconciler confirms a verified notification against the gateway's own
// record of the order before passing it on.
type Reconciler struct {
	Orders OrderQuerier
	Next   Processor
}

func NewReconciler(orders OrderQuerier, next Processor) *Reconciler {
	return &Reconciler{Orders: orders, Next: next}
}

func (r *Reconciler) Process(ctx context.Context, n *PaymentNotification) error {
	log := logger.FromCtx(ctx)

	res, err := r.Orders.QueryOrder(ctx, gateway.QueryOrderRequest{OrderNo: n.OrderNo})
	if err != nil {
		return fmt.Errorf("query order %s: %w", n.OrderNo, err)
	}
	if !res.Succeeded() {
		return fmt.Errorf("%w: order %s: %s %s", ErrOrderMismatch, n.OrderNo, res.RespCode, res.RespMsg)
	}

	order := res.Data
	switch {
	case !order.OrderAmount.Equal(n.OrderAmount):
		log.Warn("notification amount differs from gateway",
			zap.String("notified", n.OrderAmount.String()),
			zap.String("gateway", order.OrderAmount.String()),
		)
		return fmt.Errorf("%w: amount %s != %s", ErrOrderMismatch, n.OrderAmount, order.OrderAmount)
	case order.OrderStatus != n.OrderStatus:
		return fmt.Errorf("%w: status %d != %d", ErrOrderMismatch, n.OrderStatus, order.OrderStatus)
	case order.VirtualAccountNo != "" && order.VirtualAccountNo != n.VirtualAccountNo:
		return fmt.Errorf("%w: account %s != %s", ErrOrderMismatch, n.VirtualAccountNo, order.VirtualAccountNo)
	}

	log.Debug("notification reconciled")
	if r.Next == nil {
		return nil
	}
	return r.Next.Process(ctx, n)
}
