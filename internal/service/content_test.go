package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authr-project/authr-cli/internal/api"
	iface "github.com/authr-project/authr-cli/internal/service/interface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentService_Board(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	tests := []struct {
		board       string
		wantMessage string
	}{
		{board: iface.BoardAll, wantMessage: "hello PublicContent"},
		{board: iface.BoardUser, wantMessage: "hello UserBoard [alice]"},
		{board: iface.BoardModerator, wantMessage: "hello ModeratorBoard [alice]"},
		{board: iface.BoardAdmin, wantMessage: "hello AdminBoard [alice]"},
	}

	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			content, err := f.content.Board(context.Background(), tt.board)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, content.Message())
		})
	}
}

func TestContentService_UnknownBoard(t *testing.T) {
	f := newFixture(t)

	_, err := f.content.Board(context.Background(), "secret")
	assert.Error(t, err)
	assert.Empty(t, f.server.Calls(""))
}

func TestContentService_ProtectedWithoutLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.content.Whoami(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrRefresh, "no refresh token to refresh with")
	assert.Contains(t, err.Error(), "failed to fetch /whoami")
}

func TestContentService_RefreshesExpiredSession(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	f.server.ExpireAccessTokens()

	content, err := f.content.Board(context.Background(), iface.BoardUser)
	require.NoError(t, err)
	assert.Equal(t, "hello UserBoard [alice]", content.Message())
	assert.Equal(t, 1, f.server.RefreshCalls())

	accessToken, _ := f.store.AccessToken()
	assert.NotEqual(t, user.AccessToken, accessToken)

	// the refreshed token keeps working without another refresh
	_, err = f.content.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.server.RefreshCalls())
}

func TestContentService_CreateTodo(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	f.server.ExpireAccessTokens()

	todo, err := f.content.CreateTodo(context.Background(), "groceries", "milk")
	require.NoError(t, err)
	assert.Equal(t, "groceries", todo.Title)
	assert.Equal(t, "milk", todo.Body)
	assert.Equal(t, user.ID, todo.UserID)

	calls := f.server.Calls("/todo")
	require.Len(t, calls, 2, "original call and its replay")
	assert.Equal(t, calls[0].Body, calls[1].Body, "replay resends the same body")
	assert.Equal(t, http.MethodPost, calls[1].Method)

	_, err = f.content.CreateTodo(context.Background(), "", "")
	assert.Error(t, err)
}

func TestContentService_EndpointNotServed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such route"}`))
	}))
	defer server.Close()

	content := NewContentService(api.NewClient(server.URL, nil))
	_, err := content.Sessions(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/sessions is not served by "+server.URL)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}
