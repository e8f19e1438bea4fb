package service

import (
	"context"
	"errors"
	"fmt"
	"movie_api/db/redis"
	"movie_api/internal/repository"
	"movie_api/model"
	errorHandler "movie_api/pkg/error"
	"movie_api/util"
	"time"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"
)

const jwtBlacklistPrefix = "jwtKey:"

var (
	ErrUsernameAlreadyExist = errors.New("username already exists")
	ErrEmailAlreadyExist    = errors.New("email already exists")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidCredentials   = errors.New("username and password do not match")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrUserNotFound         = errors.New("user not found")
)

type IUserService interface {
	Register(username string, email string, password string) (*model.AuthResult, error)
	Login(username string, password string) (*model.AuthResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(userId int64) (*model.UserViewModel, error)
}

type UserService struct {
	userRepo repository.IUserRepository
}

func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

//------------------------------------------
//------------------------------------------

func (m *UserService) Register(username string, email string, password string) (*model.AuthResult, error) {
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := m.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameAlreadyExist
	}
	existing, err = m.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := m.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	return m.authResult(user)
}

func (m *UserService) Login(username string, password string) (*model.AuthResult, error) {
	user, err := m.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return m.authResult(user)
}

func (m *UserService) RefreshTokens(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	_, claims, err := util.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if m.isBlacklisted(ctx, refreshToken) {
		return nil, ErrInvalidRefreshToken
	}

	tokens, err := util.CreateJwtToken(claims.UserId, claims.Username)
	if err != nil {
		return nil, err
	}

	// rotated token can no longer be replayed
	m.blacklistToken(ctx, refreshToken, claims.ExpiresAt)

	return &model.TokenPair{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	}, nil
}

func (m *UserService) Logout(ctx context.Context, refreshToken string) error {
	_, claims, err := util.VerifyRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	m.blacklistToken(ctx, refreshToken, claims.ExpiresAt)
	return nil
}

func (m *UserService) GetProfile(userId int64) (*model.UserViewModel, error) {
	user, err := m.userRepo.GetUserById(userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	vm := user.ToViewModel()
	return &vm, nil
}

//------------------------------------------
//------------------------------------------

func (m *UserService) authResult(user *model.User) (*model.AuthResult, error) {
	tokens, err := util.CreateJwtToken(user.UserId, user.Username)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{
		User: user.ToViewModel(),
		Tokens: model.TokenPair{
			Access:  tokens.AccessToken,
			Refresh: tokens.RefreshToken,
		},
	}, nil
}

func (m *UserService) isBlacklisted(ctx context.Context, refreshToken string) bool {
	result, err := redis.GetRedis(ctx, jwtBlacklistPrefix+refreshToken)
	return err == nil && result != ""
}

func (m *UserService) blacklistToken(ctx context.Context, refreshToken string, expiresAtMilli int64) {
	ttl := time.Until(time.UnixMilli(expiresAtMilli))
	if ttl <= 0 {
		return
	}
	err := redis.SetRedis(ctx, jwtBlacklistPrefix+refreshToken, "blacklisted", ttl)
	if err != nil && !errors.Is(err, redis.ErrNotConnected) {
		errorHandler.SaveError(fmt.Sprintf("Redis Error on blacklisting token: %v", err), err)
	}
}
