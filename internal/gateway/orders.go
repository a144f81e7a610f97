package gateway

import "context"

func (c *Client) QueryOrder(ctx context.Context, req QueryOrderRequest) (*Response[Order], error) {
	return call[Order](ctx, c, "query_order", pathQueryOrder, req)
}

// QueryOrders returns a single page exactly as the gateway sent it. Callers
// walking several pages must sequence the calls themselves.
func (c *Client) QueryOrders(ctx context.Context, req QueryOrdersRequest) (*Response[OrderPage], error) {
	return call[OrderPage](ctx, c, "query_orders", pathQueryOrders, req)
}
