package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/authr-project/authr-cli/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManagerWithPath(filepath.Join(t.TempDir(), ConfigDirName, ConfigFileName))
}

func hasCredentials(m *Manager) bool {
	user, err := m.User()
	return err == nil && user.HasCredentials()
}

func TestManager_LoadMissingFile(t *testing.T) {
	m := newTestManager(t)

	config, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, config)
	assert.False(t, hasCredentials(m))

	accessToken, err := m.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, accessToken)
}

func TestManager_SaveRestrictsPermissions(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetUser(&token.User{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}))

	info, err := os.Stat(m.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(m.ConfigPath()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestManager_TokenStore(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SaveAPIURL("http://auth.local"))
	require.NoError(t, m.SetUser(&token.User{ID: "1", Username: "alice", AccessToken: "A1", RefreshToken: "R1"}))
	assert.True(t, hasCredentials(m))

	require.NoError(t, m.UpdateAccessToken("A2"))
	require.NoError(t, m.UpdateRefreshToken("R2"))

	// a second manager on the same file sees what the first one wrote
	other := NewManagerWithPath(m.ConfigPath())
	user, err := other.User()
	require.NoError(t, err)
	assert.Equal(t, &token.User{ID: "1", Username: "alice", AccessToken: "A2", RefreshToken: "R2"}, user)

	refreshToken, err := other.RefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "R2", refreshToken)

	require.NoError(t, m.RemoveUser())
	assert.False(t, hasCredentials(m))
	apiURL, err := m.GetAPIURL()
	require.NoError(t, err)
	assert.Equal(t, "http://auth.local", apiURL, "logout keeps the server")
}

func TestManager_UpdateWithoutUser(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.UpdateRefreshToken("R1"))

	refreshToken, err := m.RefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "R1", refreshToken)
	assert.True(t, hasCredentials(m))
}

func TestManager_CorruptFile(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(m.ConfigPath()), 0700))
	require.NoError(t, os.WriteFile(m.ConfigPath(), []byte("{not json"), 0600))

	_, err := m.Load()
	assert.Error(t, err)
	_, err = m.AccessToken()
	assert.Error(t, err)
	assert.False(t, hasCredentials(m))
}
