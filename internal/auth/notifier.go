package auth

import (
	"context"

	"github.com/authr-project/authr-cli/internal/token"
	"go.uber.org/zap"
)

// Notifier is told about every successful refresh, before the store is updated
type Notifier interface {
	TokenRefreshed(ctx context.Context, accessToken string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, accessToken string)

func (f NotifierFunc) TokenRefreshed(ctx context.Context, accessToken string) {
	f(ctx, accessToken)
}

type nopNotifier struct{}

func (nopNotifier) TokenRefreshed(context.Context, string) {}

// LogNotifier records refreshes in the log
type LogNotifier struct {
	Logger *zap.SugaredLogger
}

func (n *LogNotifier) TokenRefreshed(ctx context.Context, accessToken string) {
	claims, err := token.Inspect(accessToken)
	if err != nil {
		n.Logger.Infow("access token refreshed")
		return
	}
	n.Logger.Infow("access token refreshed", "user_id", claims.UserID, "expires_at", claims.ExpiresAt)
}
