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

type IMovieHandler interface {
	GetMovies(c *fiber.Ctx) error
	GetMovieDetail(c *fiber.Ctx) error
	GetTrending(c *fiber.Ctx) error
	GetPopular(c *fiber.Ctx) error
	GetTopRated(c *fiber.Ctx) error
	GetUpcoming(c *fiber.Ctx) error
	Search(c *fiber.Ctx) error
	GetSimilar(c *fiber.Ctx) error
	GetRecommendations(c *fiber.Ctx) error
	AddFavorite(c *fiber.Ctx) error
	RemoveFavorite(c *fiber.Ctx) error
	GetFavorites(c *fiber.Ctx) error
}

type MovieHandler struct {
	movieService service.IMovieService
	validate     *validator.Validate
}

func NewMovieHandler(movieService service.IMovieService) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		validate:     validator.New(),
	}
}

//------------------------------------------
//------------------------------------------

// GetMovies godoc
//
//	@Summary		List Movies
//	@Description	paginated list of locally known movies, most popular first
//	@Tags			Movies
//	@Param			page	query		int	false	"page number"
//	@Param			limit	query		int	false	"page size, max 100"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		400		{object}	response.ResponseErrorModel
//	@Router			/v1/movies [get]
func (m *MovieHandler) GetMovies(c *fiber.Ctx) error {
	page, pageSize, err := paginationParams(c)
	if err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	result, err := m.movieService.GetMovies(middleware.GetUserId(c), page, pageSize, c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseOKWithData(c, result)
}

// GetMovieDetail godoc
//
//	@Summary		Movie Detail
//	@Description	movie details by tmdb id, fetched from the provider when unknown locally
//	@Tags			Movies
//	@Param			tmdbId	path		int	true	"tmdb movie id"
//	@Success		200		{object}	model.MovieViewModel
//	@Failure		400,404	{object}	response.ResponseErrorModel
//	@Router			/v1/movies/:tmdbId [get]
func (m *MovieHandler) GetMovieDetail(c *fiber.Ctx) error {
	tmdbId, err := c.ParamsInt("tmdbId")
	if err != nil || tmdbId <= 0 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, "Invalid tmdbId", nil)
	}

	payload, err := m.movieService.GetMovieDetail(c.Context(), int64(tmdbId), middleware.GetUserId(c))
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

//------------------------------------------
//------------------------------------------

// GetTrending godoc
//
//	@Summary		Trending Movies
//	@Description	trending movies from the provider, cached
//	@Tags			Movies
//	@Param			page		query		int		false	"page number"
//	@Param			time_window	query		string	false	"day or week"
//	@Param			language	query		string	false	"language code, e.g. en-US"
//	@Success		200			{object}	response.PaginatedResponse
//	@Failure		400			{object}	response.ResponseErrorModel
//	@Router			/v1/movies/trending [get]
func (m *MovieHandler) GetTrending(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	p := service.ListingParams{
		Page:       page,
		TimeWindow: c.Query("time_window", "day"),
		Language:   c.Query("language", ""),
	}
	payload, err := m.movieService.GetTrending(c.Context(), p, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// GetPopular godoc
//
//	@Summary		Popular Movies
//	@Description	popular movies from the provider, cached
//	@Tags			Movies
//	@Param			page		query		int		false	"page number"
//	@Param			language	query		string	false	"language code"
//	@Param			region		query		string	false	"region code, e.g. US"
//	@Success		200			{object}	response.PaginatedResponse
//	@Failure		400			{object}	response.ResponseErrorModel
//	@Router			/v1/movies/popular [get]
func (m *MovieHandler) GetPopular(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	p := service.ListingParams{
		Page:     page,
		Language: c.Query("language", ""),
		Region:   c.Query("region", ""),
	}
	payload, err := m.movieService.GetPopular(c.Context(), p, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// GetTopRated godoc
//
//	@Summary		Top Rated Movies
//	@Tags			Movies
//	@Param			page	query		int	false	"page number"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		400		{object}	response.ResponseErrorModel
//	@Router			/v1/movies/top_rated [get]
func (m *MovieHandler) GetTopRated(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	payload, err := m.movieService.GetTopRated(c.Context(), service.ListingParams{Page: page}, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// GetUpcoming godoc
//
//	@Summary		Upcoming Movies
//	@Tags			Movies
//	@Param			page	query		int	false	"page number"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		400		{object}	response.ResponseErrorModel
//	@Router			/v1/movies/upcoming [get]
func (m *MovieHandler) GetUpcoming(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	payload, err := m.movieService.GetUpcoming(c.Context(), service.ListingParams{Page: page}, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// Search godoc
//
//	@Summary		Search Movies
//	@Description	search the provider catalog, cached. Empty query returns an empty page
//	@Tags			Movies
//	@Param			query			query		string	false	"search text"
//	@Param			page			query		int		false	"page number"
//	@Param			include_adult	query		bool	false	"include adult titles"
//	@Param			year			query		int		false	"release year"
//	@Param			language		query		string	false	"language code"
//	@Success		200				{object}	response.PaginatedResponse
//	@Failure		400				{object}	response.ResponseErrorModel
//	@Router			/v1/movies/search [get]
func (m *MovieHandler) Search(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}
	year := c.QueryInt("year", 0)
	if year < 0 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidQuery, nil)
	}

	p := service.ListingParams{
		Page:         page,
		Query:        c.Query("query", ""),
		IncludeAdult: c.QueryBool("include_adult", false),
		Year:         year,
		Language:     c.Query("language", ""),
	}
	payload, err := m.movieService.Search(c.Context(), p, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// GetSimilar godoc
//
//	@Summary		Similar Movies
//	@Description	provider recommendations for a movie, falls back to local genre overlap
//	@Tags			Movies
//	@Param			tmdbId	path		int	true	"tmdb movie id"
//	@Param			page	query		int	false	"page number"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		400,404	{object}	response.ResponseErrorModel
//	@Router			/v1/movies/:tmdbId/similar [get]
func (m *MovieHandler) GetSimilar(c *fiber.Ctx) error {
	tmdbId, err := c.ParamsInt("tmdbId")
	if err != nil || tmdbId <= 0 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, "Invalid tmdbId", nil)
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	payload, err := m.movieService.GetSimilar(c.Context(), int64(tmdbId), page, middleware.GetUserId(c), c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

// GetRecommendations godoc
//
//	@Summary		Recommendations
//	@Description	personalized recommendations from favorite genres, popular fallback
//	@Tags			Movies
//	@Param			limit	query		int	false	"number of movies, max 50"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		401		{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/movies/recommendations [get]
func (m *MovieHandler) GetRecommendations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 50 {
		limit = 20
	}

	payload, err := m.movieService.GetRecommendations(c.Context(), middleware.GetUserId(c), limit)
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

//------------------------------------------
//------------------------------------------

// AddFavorite godoc
//
//	@Summary		Add Favorite
//	@Description	add a movie to the user's favorites with an optional note
//	@Tags			Favorites
//	@Param			tmdbId		path		int						true	"tmdb movie id"
//	@Param			body		body		model.FavoriteRequest	false	"optional note"
//	@Success		201			{object}	model.FavoriteViewModel
//	@Failure		400,404,409	{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/movies/:tmdbId/favorite [post]
func (m *MovieHandler) AddFavorite(c *fiber.Ctx) error {
	tmdbId, err := c.ParamsInt("tmdbId")
	if err != nil || tmdbId <= 0 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, "Invalid tmdbId", nil)
	}

	var req model.FavoriteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, nil)
		}
		if err := m.validate.Struct(&req); err != nil {
			return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.BadRequestBody, err.Error())
		}
	}

	favorite, err := m.movieService.AddFavorite(c.Context(), middleware.GetUserId(c), int64(tmdbId), req.Notes)
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseCreated(c, favorite)
}

// RemoveFavorite godoc
//
//	@Summary		Remove Favorite
//	@Tags			Favorites
//	@Param			tmdbId	path	int	true	"tmdb movie id"
//	@Success		204
//	@Failure		400,404	{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/movies/:tmdbId/favorite [delete]
func (m *MovieHandler) RemoveFavorite(c *fiber.Ctx) error {
	tmdbId, err := c.ParamsInt("tmdbId")
	if err != nil || tmdbId <= 0 {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, "Invalid tmdbId", nil)
	}

	if err := m.movieService.RemoveFavorite(c.Context(), middleware.GetUserId(c), int64(tmdbId)); err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseNoContent(c)
}

// GetFavorites godoc
//
//	@Summary		List Favorites
//	@Description	user's favorites, newest first, with embedded movie summaries
//	@Tags			Favorites
//	@Param			page	query		int	false	"page number"
//	@Param			limit	query		int	false	"page size, max 100"
//	@Success		200		{object}	response.PaginatedResponse
//	@Failure		400,401	{object}	response.ResponseErrorModel
//	@Security		BearerAuth
//	@Router			/v1/favorites [get]
func (m *MovieHandler) GetFavorites(c *fiber.Ctx) error {
	page, pageSize, err := paginationParams(c)
	if err != nil {
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidPage, nil)
	}

	payload, err := m.movieService.GetFavorites(c.Context(), middleware.GetUserId(c), page, pageSize, c.Path())
	if err != nil {
		return m.errorResponse(c, err)
	}
	return response.ResponseRawJson(c, payload)
}

//------------------------------------------
//------------------------------------------

func (m *MovieHandler) errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrMovieNotFound):
		return response.ResponseError(c, fiber.StatusNotFound, response.CodeNotFound, response.MovieNotFound, nil)
	case errors.Is(err, service.ErrFavoriteNotFound):
		return response.ResponseError(c, fiber.StatusNotFound, response.CodeNotFound, response.FavoriteNotFound, nil)
	case errors.Is(err, service.ErrAlreadyFavorited):
		return response.ResponseError(c, fiber.StatusConflict, response.CodeConflict, response.AlreadyFavorited, nil)
	case errors.Is(err, service.ErrInvalidQuery):
		return response.ResponseError(c, fiber.StatusBadRequest, response.CodeValidationError, response.InvalidQuery, nil)
	case errors.Is(err, service.ErrProviderRateLimited):
		return response.ResponseError(c, fiber.StatusTooManyRequests, response.CodeTooManyRequests, response.ProviderRateLimited, nil)
	case errors.Is(err, service.ErrProviderUnavailable):
		return response.ResponseError(c, fiber.StatusServiceUnavailable, response.CodeServiceUnavailable, response.ProviderUnavailable, nil)
	}
	errorHandler.SaveError(err.Error(), err)
	return response.ResponseError(c, fiber.StatusInternalServerError, response.CodeInternalError, response.ServerError, nil)
}

func paginationParams(c *fiber.Ctx) (int, int, error) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 0, 0, errors.New("invalid page")
	}
	pageSize := c.QueryInt("limit", 20)
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize, nil
}
