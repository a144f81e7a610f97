package gateway

import (
	"context"
	"encoding/json"
)

// CreateVirtualAccount issues a new virtual account routed to the merchant wallet.
func (c *Client) CreateVirtualAccount(ctx context.Context, req CreateVirtualAccountRequest) (*Response[VirtualAccount], error) {
	return call[VirtualAccount](ctx, c, "create_virtual_account", pathCreateAccount, req)
}

// UpdateVirtualAccountStatus enables or disables an account.
func (c *Client) UpdateVirtualAccountStatus(ctx context.Context, req UpdateVirtualAccountStatusRequest) (*Response[VirtualAccount], error) {
	return call[VirtualAccount](ctx, c, "update_virtual_account_status", pathUpdateAccount, req)
}

func (c *Client) DeleteVirtualAccount(ctx context.Context, req DeleteVirtualAccountRequest) (*Response[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, "delete_virtual_account", pathDeleteAccount, req)
}

func (c *Client) QueryVirtualAccount(ctx context.Context, req QueryVirtualAccountRequest) (*Response[VirtualAccount], error) {
	return call[VirtualAccount](ctx, c, "query_virtual_account", pathQueryAccount, req)
}
