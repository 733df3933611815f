// Package auth implements the credential side of the request pipeline:
// bearer injection on every call and transparent access token refresh on 401.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/authr-project/authr-cli/internal/api"
	"github.com/authr-project/authr-cli/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// RefreshRequest is the body sent to the refresh endpoint
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResult is the body returned by the refresh endpoint.
// authr rotates the refresh token on every refresh; RefreshToken is empty when the server does not.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Interceptor attaches credentials to requests and refreshes them on authorization failures
type Interceptor struct {
	store     token.Store
	notifier  Notifier
	endpoints api.Endpoints
	logger    *zap.SugaredLogger
	coalesce  bool
	group     singleflight.Group
}

// New creates an interceptor reading credentials from store
func New(store token.Store, options ...Option) *Interceptor {
	ret := &Interceptor{
		store:     store,
		notifier:  nopNotifier{},
		endpoints: api.DefaultEndpoints(),
		logger:    zap.NewNop().Sugar(),
		coalesce:  true,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Install registers the interceptor hooks on pipeline
func (i *Interceptor) Install(pipeline *api.Pipeline) {
	pipeline.AddRequestHook(i.Authorize)
	pipeline.AddResponseHook(api.ResponseHook{
		OnSuccess: i.PassThrough,
		OnFailure: i.Recover,
	})
}

// Authorize returns a copy of req carrying the stored access token as a bearer credential.
// Without a token the request is sent unauthenticated.
func (i *Interceptor) Authorize(ctx context.Context, req *api.Request) (*api.Request, error) {
	if req == nil {
		return nil, &api.RequestConfigError{Err: errors.New("request is nil")}
	}
	accessToken, err := i.store.AccessToken()
	if err != nil {
		i.logger.Warnw("failed to read access token, sending unauthenticated", "path", req.Path, "error", err)
		return req, nil
	}
	if accessToken == "" {
		return req, nil
	}
	return req.WithHeader("Authorization", "Bearer "+accessToken), nil
}

// PassThrough returns resp unchanged
func (i *Interceptor) PassThrough(ctx context.Context, resp *api.Response) (*api.Response, error) {
	return resp, nil
}

// Recover refreshes the access token after a 401 and replays the failed request once.
// Any other failure, a failure of the login or refresh endpoint, and a failure of an
// already replayed request are returned unchanged.
func (i *Interceptor) Recover(ctx context.Context, t api.Transport, err error) (*api.Response, error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}
	req, ok := api.FailedRequest(err)
	if !ok {
		return nil, err
	}
	if i.endpoints.IsLogin(req.Path) || i.endpoints.IsRefresh(req.Path) {
		return nil, err
	}
	if !apiErr.IsUnauthorized() || req.Retried {
		return nil, err
	}

	retry := req.WithRetry()
	reused, refreshErr := i.refresh(ctx, t, req, true)
	if refreshErr != nil {
		return nil, refreshErr
	}
	i.logger.Debugw("replaying request with refreshed token", "path", retry.Path, "request_id", retry.Header.Get(api.HeaderRequestID))
	resp, err := t.Do(ctx, retry)
	if !reused || !errors.As(err, &apiErr) || !apiErr.IsUnauthorized() {
		return resp, err
	}

	// the token another call refreshed to was rejected too; no refresh has run for req yet
	i.logger.Debugw("reused token rejected, refreshing", "path", retry.Path, "request_id", retry.Header.Get(api.HeaderRequestID))
	if _, refreshErr := i.refresh(ctx, t, req, false); refreshErr != nil {
		return nil, refreshErr
	}
	return t.Do(ctx, retry)
}

// refresh obtains a new access token for the failed request req. With coalescing enabled
// concurrent callers share one refresh call, and when reuse is allowed a caller whose token
// was already replaced takes the stored one; reused reports that no refresh ran.
func (i *Interceptor) refresh(ctx context.Context, t api.Transport, req *api.Request, reuse bool) (reused bool, err error) {
	if !i.coalesce {
		_, err = i.refreshToken(ctx, t)
		return false, err
	}

	if sentToken := req.BearerToken(); reuse && sentToken != "" {
		if current, err := i.store.AccessToken(); err == nil && current != "" && current != sentToken {
			return true, nil
		}
	}

	ch := i.group.DoChan(refreshKey, func() (interface{}, error) {
		return i.refreshToken(context.WithoutCancel(ctx), t)
	})
	select {
	case result := <-ch:
		if result.Err != nil {
			return false, result.Err
		}
		if result.Shared {
			i.logger.Debugw("joined in-flight token refresh")
		}
		return false, nil
	case <-ctx.Done():
		return false, &api.NetworkError{Request: req, Err: ctx.Err()}
	}
}

func (i *Interceptor) refreshToken(ctx context.Context, t api.Transport) (string, error) {
	refreshToken, err := i.store.RefreshToken()
	if err != nil {
		return "", &api.RefreshError{Err: fmt.Errorf("failed to read refresh token: %w", err)}
	}

	req, err := api.NewRequest(http.MethodPost, i.endpoints.Refresh, &RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", &api.RefreshError{Err: err}
	}
	req.Retried = true

	resp, err := t.Do(ctx, req)
	if err != nil {
		i.logger.Infow("token refresh rejected", "error", err)
		return "", &api.RefreshError{Err: err}
	}

	var result RefreshResult
	if err := resp.Decode(&result); err != nil {
		return "", &api.RefreshError{Err: err}
	}
	if result.AccessToken == "" {
		return "", &api.RefreshError{Err: errors.New("refresh response carries no access token")}
	}

	i.notifier.TokenRefreshed(ctx, result.AccessToken)
	if err := i.store.UpdateAccessToken(result.AccessToken); err != nil {
		return "", &api.RefreshError{Err: fmt.Errorf("failed to save access token: %w", err)}
	}
	if result.RefreshToken != "" {
		if err := i.store.UpdateRefreshToken(result.RefreshToken); err != nil {
			return "", &api.RefreshError{Err: fmt.Errorf("failed to save refresh token: %w", err)}
		}
	}
	return result.AccessToken, nil
}
