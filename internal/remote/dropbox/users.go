package dropbox

import (
	"context"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

// CurrentAccount returns the account the token belongs to.
func (c *Client) CurrentAccount(ctx context.Context) (*remote.Account, error) {
	var a account
	if err := c.rpcCall(ctx, "get_current_account", "/users/get_current_account", familyService, nil, &a); err != nil {
		return nil, err
	}
	return a.account(), nil
}

// SpaceUsage returns used and allocated bytes.
func (c *Client) SpaceUsage(ctx context.Context) (*remote.SpaceUsage, error) {
	var s spaceUsage
	if err := c.rpcCall(ctx, "get_space_usage", "/users/get_space_usage", familyService, nil, &s); err != nil {
		return nil, err
	}
	return s.usage(), nil
}
