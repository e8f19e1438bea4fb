package service

import (
	"context"
	"movie_api/configs"
	"movie_api/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  []model.User
	nextId int64
}

func (r *fakeUserRepo) CreateUser(user *model.User) error {
	r.nextId++
	user.UserId = r.nextId
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserById(userId int64) (*model.User, error) {
	for i := range r.users {
		if r.users[i].UserId == userId {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func setupAuthConfigs(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
	configs.LoadEnvVariables()
}

//------------------------------------------
//------------------------------------------

func TestRegisterIssuesTokenPair(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	result, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	assert.Equal(t, "neo", result.User.Username)
	assert.Equal(t, "neo@matrix.io", result.User.Email)
	assert.NotZero(t, result.User.UserId)
	assert.NotEmpty(t, result.Tokens.Access)
	assert.NotEmpty(t, result.Tokens.Refresh)
}

func TestRegisterHashesPassword(t *testing.T) {
	setupAuthConfigs(t)
	repo := &fakeUserRepo{}
	userSvc := NewUserService(repo)

	_, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	require.Len(t, repo.users, 1)
	assert.NotEqual(t, "whiterabbit99", repo.users[0].Password)
	assert.NotEmpty(t, repo.users[0].Password)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	_, err = userSvc.Register("neo", "other@matrix.io", "whiterabbit99")
	assert.ErrorIs(t, err, ErrUsernameAlreadyExist)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	_, err = userSvc.Register("trinity", "neo@matrix.io", "whiterabbit99")
	assert.ErrorIs(t, err, ErrEmailAlreadyExist)
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Register("neo", "not-an-email", "whiterabbit99")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLogin(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	result, err := userSvc.Login("neo", "whiterabbit99")
	require.NoError(t, err)
	assert.Equal(t, "neo", result.User.Username)
	assert.NotEmpty(t, result.Tokens.Access)
}

func TestLoginWrongPassword(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	_, err = userSvc.Login("neo", "bluepill")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUsername(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.Login("smith", "whiterabbit99")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

//------------------------------------------
//------------------------------------------

func TestRefreshTokensReturnsNewPair(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	result, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	pair, err := userSvc.RefreshTokens(context.Background(), result.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestRefreshTokensRejectsGarbage(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.RefreshTokens(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshTokensRejectsAccessToken(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	result, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	// signed with the access secret, must not pass refresh verification
	_, err = userSvc.RefreshTokens(context.Background(), result.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutRejectsGarbage(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	err := userSvc.Logout(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestGetProfile(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	result, err := userSvc.Register("neo", "neo@matrix.io", "whiterabbit99")
	require.NoError(t, err)

	profile, err := userSvc.GetProfile(result.User.UserId)
	require.NoError(t, err)
	assert.Equal(t, "neo", profile.Username)
	assert.Equal(t, "neo@matrix.io", profile.Email)
}

func TestGetProfileUnknownUser(t *testing.T) {
	setupAuthConfigs(t)
	userSvc := NewUserService(&fakeUserRepo{})

	_, err := userSvc.GetProfile(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
