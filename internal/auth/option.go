package auth

import (
	"github.com/authr-project/authr-cli/internal/api"
	"go.uber.org/zap"
)

// Option configures an Interceptor
type Option func(*Interceptor)

// WithNotifier sets the collaborator told about each refresh
func WithNotifier(notifier Notifier) Option {
	return func(i *Interceptor) {
		if notifier != nil {
			i.notifier = notifier
		}
	}
}

// WithEndpoints sets the login and refresh paths
func WithEndpoints(endpoints api.Endpoints) Option {
	return func(i *Interceptor) {
		i.endpoints = endpoints
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithCoalescing toggles sharing one refresh between concurrent 401 responses
func WithCoalescing(enabled bool) Option {
	return func(i *Interceptor) {
		i.coalesce = enabled
	}
}
