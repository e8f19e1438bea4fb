package response

// error codes, stable part of the api contract
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

const (
	ServerError = "Server error, try again later"
	//----------------------
	MovieNotFound    = "Movie not found"
	FavoriteNotFound = "Movie was not in your favorites"
	UserNotFound     = "Cannot find user"
	//----------------------
	InvalidRefreshToken = "Invalid refreshToken"
	InvalidToken        = "Invalid/Stale token"
	TokenExpired        = "Token has expired"
	TokenNotProvided    = "Unauthorized, token not provided"
	//----------------------
	UserPassNotMatch = "Username and password do not match"
	//----------------------
	BadRequestBody = "Incorrect request body"
	InvalidPage    = "Invalid page parameter"
	InvalidQuery   = "Invalid query parameter"
	//----------------------
	UsernameAlreadyExist = "This username already exists"
	EmailAlreadyExist    = "This email already exists"
	AlreadyFavorited     = "Movie is already in your favorites"
	//----------------------
	ProviderUnavailable = "Movie provider unavailable, try again later"
	ProviderRateLimited = "Too many requests to movie provider"
	RateLimitReached    = "Too many requests"
)
