package dropbox

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

// Connector returns a remote.Connector that builds a Client from base with
// the given app name and token. The token is checked by the first call.
func Connector(base Options) remote.Connector {
	return func(ctx context.Context, appName, token string) (remote.Service, error) {
		if token == "" {
			return nil, remote.NewServiceError("access token is required", errors.New("empty token"))
		}

		opts := base
		opts.AppName = appName
		opts.Token = token
		client := New(opts)

		client.logger.Debug("dropbox client created", zap.String("app", appName))
		return client, nil
	}
}
