package handler

import (
	"errors"
	"movie_api/api/middleware"
	"movie_api/internal/service"
	"movie_api/model"
	errorHandler "movie_api/pkg/error"
	"movie_api/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IUserHandler interface {
	Register(c *fiber.Ctx) error
	Login(c *fiber.Ctx) error
	RefreshToken(c *fiber.Ctx) error
	Logout(c *fiber.Ctx) error
	GetProfile(c *fiber.Ctx) error
}

type UserHandler struct {
	userService service.IUserService
	validate    *validator.Validate
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

//------------------------------------------
//------------------------------------------

// Register godoc
//
//	@Summary		Register
//	@Description	create a new user and return token pair
//	@Tags			Auth
//	@Param			body	body		model.RegisterRequest	true	"registration data"
//	@Success		201		{object}	model.AuthResult
//	@Failure		400,409	{object}	response.ResponseErrorModel
//	@Router			/v1/auth/register [post]
func (m *UserHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, nil)
	}
	if err := m.validate.Struct(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, err.Error())
	}

	result, err := m.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameAlreadyExist):
			return response.ResponseError(c, fiber.StatusConflict, response.CodeConflict, response.UsernameAlreadyExist, nil)
		case errors.Is(err, service.ErrEmailAlreadyExist):
			return response.ResponseError(c, fiber.StatusConflict, response.CodeConflict, response.EmailAlreadyExist, nil)
		case errors.Is(err, service.ErrInvalidEmail):
			return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, "invalid email address")
		}
		errorHandler.SaveError(err.Error(), err)
		return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
	}

	return response.ResponseCreated(c, result)
}

// Login godoc
//
//	@Summary		Login
//	@Description	authenticate with username/password, returns token pair
//	@Tags			Auth
//	@Param			body	body		model.LoginRequest	true	"credentials"
//	@Success		200		{object}	model.AuthResult
//	@Failure		400,401	{object}	response.ResponseErrorModel
//	@Router			/v1/auth/login [post]
func (m *UserHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, nil)
	}
	if err := m.validate.Struct(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, err.Error())
	}

	result, err := m.userService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeUnauthorized, response.UserPassNotMatch, nil)
		}
		errorHandler.SaveError(err.Error(), err)
		return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
	}

	return response.ResponseOKWithData(c, result)
}

// RefreshToken godoc
//
//	@Summary		Refresh Token
//	@Description	rotate the refresh token, returns a new token pair
//	@Tags			Auth
//	@Param			body	body		model.RefreshRequest	true	"refresh token"
//	@Success		200		{object}	model.TokenPair
//	@Failure		400,401	{object}	response.ResponseErrorModel
//	@Router			/v1/auth/refresh [post]
func (m *UserHandler) RefreshToken(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, nil)
	}
	if err := m.validate.Struct(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, err.Error())
	}

	tokens, err := m.userService.RefreshTokens(c.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeInvalidToken, response.InvalidRefreshToken, nil)
		}
		errorHandler.SaveError(err.Error(), err)
		return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
	}

	return response.ResponseOKWithData(c, tokens)
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	blacklist the refresh token until it expires
//	@Tags			Auth
//	@Param			body	body		model.RefreshRequest	true	"refresh token"
//	@Success		200		{object}	map[string]string
//	@Failure		400,401	{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post]
func (m *UserHandler) Logout(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, nil)
	}
	if err := m.validate.Struct(&req); err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, err.Error())
	}

	if err := m.userService.Logout(c.Context(), req.Refresh); err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeInvalidToken, response.InvalidRefreshToken, nil)
		}
		errorHandler.SaveError(err.Error(), err)
		return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
	}

	return response.ResponseOKWithData(c, fiber.Map{"message": "Logged out successfully"})
}

// GetProfile godoc
//
//	@Summary		Profile
//	@Description	current user profile
//	@Tags			Auth
//	@Success		200	{object}	model.UserViewModel
//	@Failure		401	{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/auth/me [get]
func (m *UserHandler) GetProfile(c *fiber.Ctx) error {
	userId := middleware.GetUserId(c)

	profile, err := m.userService.GetProfile(userId)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return response.ResponseError(c, fiber.StatusNotFound, response.CodeNotFound, response.UserNotFound, nil)
		}
		errorHandler.SaveError(err.Error(), err)
		return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
	}

	return response.ResponseOKWithData(c, profile)
}
