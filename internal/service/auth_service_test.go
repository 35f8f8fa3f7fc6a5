package service

import (
	"testing"
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := newTestEnv(t)
	env.Cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	env.Cfg.JWT.ExpireTime = time.Hour
	return env, NewAuthService(env.Users, env.Cfg)
}

func TestRegisterPersistsUser(t *testing.T) {
	env, auth := newAuthEnv(t)

	user := &model.User{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	require.NoError(t, auth.Register(user))

	saved, err := env.Users.FindByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.Learner, saved.Role)
	assert.NotEqual(t, "hunter22", saved.Password)
	assert.False(t, saved.LastLogin.IsZero())
	assert.False(t, saved.LastSeen.IsZero())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, auth := newAuthEnv(t)

	require.NoError(t, auth.Register(&model.User{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}))
	err := auth.Register(&model.User{Name: "Imposter", Email: "ada@example.com", Password: "other"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	_, auth := newAuthEnv(t)

	require.NoError(t, auth.Register(&model.User{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}))

	token, err := auth.Login("ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.Login("ada@example.com", "wrong")
	assert.Error(t, err)

	_, err = auth.Login("nobody@example.com", "hunter22")
	assert.Error(t, err)
}
