// Package di provides dependency injection for the authr CLI.
// It contains the service container and factory functions.
package di

import (
	"net/http"

	"github.com/authr-project/authr-cli/internal/api"
	"github.com/authr-project/authr-cli/internal/auth"
	"github.com/authr-project/authr-cli/internal/config"
	"github.com/authr-project/authr-cli/internal/service"
	iface "github.com/authr-project/authr-cli/internal/service/interface"
	"github.com/authr-project/authr-cli/internal/token"
	"go.uber.org/zap"
)

// Container holds all service dependencies for the CLI.
// Services are accessed via interfaces to enable mocking in tests.
type Container struct {
	configManager  *config.Manager
	client         *api.Client
	authService    iface.AuthService
	contentService iface.ContentService
}

// NewContainer creates a new dependency container with default implementations
func NewContainer(settings *config.Settings, logger *zap.SugaredLogger) (*Container, error) {
	var (
		configManager *config.Manager
		err           error
	)
	if settings.ConfigPath != "" {
		configManager = config.NewManagerWithPath(settings.ConfigPath)
	} else if configManager, err = config.NewManager(); err != nil {
		return nil, err
	}

	storedURL, err := configManager.GetAPIURL()
	if err != nil {
		return nil, err
	}
	apiURL := settings.ResolveAPIURL(storedURL)
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Debugw("using credentials file", "path", configManager.ConfigPath(), "api_url", apiURL)

	c := NewContainerWithStore(apiURL, configManager, settings, logger)
	c.configManager = configManager
	return c, nil
}

// NewContainerWithStore wires the pipeline, transport and services around store
func NewContainerWithStore(apiURL string, store token.Store, settings *config.Settings, logger *zap.SugaredLogger) *Container {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	endpoints := settings.Endpoints()

	pipeline := api.NewPipeline()
	pipeline.AddRequestHook(api.RequestIDHook)
	auth.New(store,
		auth.WithEndpoints(endpoints),
		auth.WithLogger(logger),
		auth.WithCoalescing(settings.CoalesceRefresh),
		auth.WithNotifier(&auth.LogNotifier{Logger: logger}),
	).Install(pipeline)

	client := api.NewClient(apiURL, pipeline,
		api.WithHTTPClient(&http.Client{Timeout: settings.Timeout}),
		api.WithLogger(logger),
	)

	return &Container{
		client:         client,
		authService:    service.NewAuthService(client, store, endpoints),
		contentService: service.NewContentService(client),
	}
}

// NewContainerWithServices creates a container with custom service implementations.
// This is useful for testing with mock services.
func NewContainerWithServices(
	authService iface.AuthService,
	contentService iface.ContentService,
) *Container {
	return &Container{
		authService:    authService,
		contentService: contentService,
	}
}

// AuthService returns the authentication service
func (c *Container) AuthService() iface.AuthService {
	return c.authService
}

// ContentService returns the protected content service
func (c *Container) ContentService() iface.ContentService {
	return c.contentService
}

// ConfigManager returns the config manager, nil when built around another store
func (c *Container) ConfigManager() *config.Manager {
	return c.configManager
}

// Client returns the API client
func (c *Container) Client() *api.Client {
	return c.client
}
