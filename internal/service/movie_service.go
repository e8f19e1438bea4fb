package service

import (
	"context"
	"errors"
	"fmt"
	"movie_api/internal/repository"
	"movie_api/model"
	errorHandler "movie_api/pkg/error"
	"movie_api/pkg/response"
	"strconv"

	"gorm.io/gorm"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrAlreadyFavorited = errors.New("movie is already favorited")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type ListingParams struct {
	Page         int
	TimeWindow   string
	Language     string
	Region       string
	Query        string
	IncludeAdult bool
	Year         int
}

type IMovieService interface {
	GetMovies(userId int64, page int, pageSize int, path string) (*response.PaginatedResponse, error)
	GetMovieDetail(ctx context.Context, tmdbId int64, userId int64) ([]byte, error)
	GetTrending(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error)
	GetPopular(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error)
	GetTopRated(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error)
	GetUpcoming(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error)
	Search(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error)
	GetSimilar(ctx context.Context, tmdbId int64, page int, userId int64, path string) ([]byte, error)
	GetRecommendations(ctx context.Context, userId int64, limit int) ([]byte, error)
	AddFavorite(ctx context.Context, userId int64, tmdbId int64, notes string) (*model.FavoriteViewModel, error)
	RemoveFavorite(ctx context.Context, userId int64, tmdbId int64) error
	GetFavorites(ctx context.Context, userId int64, page int, pageSize int, path string) ([]byte, error)
}

type MovieService struct {
	movieRepo repository.IMovieRepository
	tmdbSvc   ITmdbService
	cacheSvc  ICacheService
}

func NewMovieService(movieRepo repository.IMovieRepository, tmdbSvc ITmdbService, cacheSvc ICacheService) *MovieService {
	return &MovieService{
		movieRepo: movieRepo,
		tmdbSvc:   tmdbSvc,
		cacheSvc:  cacheSvc,
	}
}

//------------------------------------------
//------------------------------------------

func (m *MovieService) GetMovies(userId int64, page int, pageSize int, path string) (*response.PaginatedResponse, error) {
	movies, count, err := m.movieRepo.GetMovies(page, pageSize)
	if err != nil {
		return nil, err
	}

	vms := make([]model.MovieViewModel, 0, len(movies))
	for i := range movies {
		vms = append(vms, movies[i].ToViewModel())
	}
	m.annotateFavorites(vms, userId)

	params := map[string]string{"page": strconv.Itoa(page), "limit": strconv.Itoa(pageSize)}
	envelope := response.Paginate(path, params, page, response.TotalPages(count, pageSize), count, vms)
	return &envelope, nil
}

func (m *MovieService) GetMovieDetail(ctx context.Context, tmdbId int64, userId int64) ([]byte, error) {
	params := map[string]string{"tmdbId": strconv.FormatInt(tmdbId, 10)}
	key := m.cacheSvc.BuildKey("movie_detail", params, userId)

	return m.cacheSvc.GetOrCompute(ctx, key, m.cacheSvc.ListingTTL(userId != 0), func() (interface{}, error) {
		movie, err := m.resolveMovie(ctx, tmdbId)
		if err != nil {
			return nil, err
		}
		vm := movie.ToViewModel()
		if userId != 0 {
			favIds, err := m.movieRepo.GetFavoriteTmdbIds(userId, []int64{tmdbId})
			if err == nil {
				isFavorite := len(favIds) > 0
				vm.IsFavorite = &isFavorite
			}
		}
		return vm, nil
	})
}

//------------------------------------------
//------------------------------------------

func (m *MovieService) GetTrending(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error) {
	if p.TimeWindow != "day" && p.TimeWindow != "week" {
		p.TimeWindow = "day"
	}
	params := map[string]string{"page": strconv.Itoa(p.Page), "time_window": p.TimeWindow}
	if p.Language != "" {
		params["language"] = p.Language
	}
	return m.listingPage(ctx, "trending", path, params, userId, func() (*model.ProviderPage, error) {
		return m.tmdbSvc.FetchTrending(ctx, p.TimeWindow, p.Page, p.Language)
	})
}

func (m *MovieService) GetPopular(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error) {
	params := map[string]string{"page": strconv.Itoa(p.Page)}
	if p.Language != "" {
		params["language"] = p.Language
	}
	if p.Region != "" {
		params["region"] = p.Region
	}
	return m.listingPage(ctx, "popular", path, params, userId, func() (*model.ProviderPage, error) {
		return m.tmdbSvc.FetchPopular(ctx, p.Page, p.Language, p.Region)
	})
}

func (m *MovieService) GetTopRated(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error) {
	params := map[string]string{"page": strconv.Itoa(p.Page)}
	return m.listingPage(ctx, "top_rated", path, params, userId, func() (*model.ProviderPage, error) {
		return m.tmdbSvc.FetchTopRated(ctx, p.Page)
	})
}

func (m *MovieService) GetUpcoming(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error) {
	params := map[string]string{"page": strconv.Itoa(p.Page)}
	return m.listingPage(ctx, "upcoming", path, params, userId, func() (*model.ProviderPage, error) {
		return m.tmdbSvc.FetchUpcoming(ctx, p.Page)
	})
}

func (m *MovieService) Search(ctx context.Context, p ListingParams, userId int64, path string) ([]byte, error) {
	params := map[string]string{
		"page":          strconv.Itoa(p.Page),
		"query":         p.Query,
		"include_adult": strconv.FormatBool(p.IncludeAdult),
	}
	if p.Year > 0 {
		params["year"] = strconv.Itoa(p.Year)
	}
	if p.Language != "" {
		params["language"] = p.Language
	}
	return m.listingPage(ctx, "search", path, params, userId, func() (*model.ProviderPage, error) {
		if p.Query == "" {
			return &model.ProviderPage{Page: 1, Results: []model.ProviderMovie{}}, nil
		}
		return m.tmdbSvc.Search(ctx, p.Query, p.Page, p.IncludeAdult, p.Year, p.Language)
	})
}

func (m *MovieService) GetSimilar(ctx context.Context, tmdbId int64, page int, userId int64, path string) ([]byte, error) {
	params := map[string]string{"page": strconv.Itoa(page), "tmdbId": strconv.FormatInt(tmdbId, 10)}
	key := m.cacheSvc.BuildKey("similar", params, userId)

	return m.cacheSvc.GetOrCompute(ctx, key, m.cacheSvc.ListingTTL(userId != 0), func() (interface{}, error) {
		providerPage, err := m.tmdbSvc.FetchRecommendations(ctx, tmdbId, page)
		if err != nil {
			if errors.Is(err, ErrProviderUnavailable) {
				return m.similarFallback(tmdbId, userId, path, params)
			}
			if errors.Is(err, ErrProviderNotFound) {
				return nil, ErrMovieNotFound
			}
			return nil, err
		}
		m.storeMovies(providerPage.Results)
		vms := m.toViewModels(providerPage.Results, userId)
		return response.Paginate(path, params, providerPage.Page, providerPage.TotalPages, providerPage.TotalResults, vms), nil
	})
}

// similarFallback serves genre-overlapping local movies when the provider is down.
func (m *MovieService) similarFallback(tmdbId int64, userId int64, path string, params map[string]string) (interface{}, error) {
	movie, err := m.movieRepo.GetMovieByTmdbId(tmdbId)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	candidates, err := m.movieRepo.GetTopMoviesExcluding([]int64{tmdbId}, 100)
	if err != nil {
		return nil, err
	}

	matched := make([]model.MovieViewModel, 0)
	for i := range candidates {
		if overlaps(candidates[i].GenreIds, movie.GenreIds) {
			matched = append(matched, candidates[i].ToViewModel())
			if len(matched) >= 10 {
				break
			}
		}
	}
	m.annotateFavorites(matched, userId)
	return response.Paginate(path, params, 1, 1, int64(len(matched)), matched), nil
}

func (m *MovieService) GetRecommendations(ctx context.Context, userId int64, limit int) ([]byte, error) {
	params := map[string]string{"limit": strconv.Itoa(limit)}
	key := m.cacheSvc.BuildKey("recommendations", params, userId)

	return m.cacheSvc.GetOrCompute(ctx, key, PersonalizedListingTTL, func() (interface{}, error) {
		favorites, err := m.movieRepo.GetAllFavorites(userId)
		if err != nil {
			return nil, err
		}

		genreSet := make(map[int64]bool)
		favoriteTmdbIds := make([]int64, 0, len(favorites))
		for i := range favorites {
			favoriteTmdbIds = append(favoriteTmdbIds, favorites[i].Movie.TmdbId)
			for _, g := range favorites[i].Movie.GenreIds {
				genreSet[g] = true
			}
		}

		var picked []model.MovieViewModel
		if len(genreSet) > 0 {
			candidates, err := m.movieRepo.GetTopMoviesExcluding(favoriteTmdbIds, limit*5)
			if err != nil {
				return nil, err
			}
			for i := range candidates {
				if overlapsSet(candidates[i].GenreIds, genreSet) {
					picked = append(picked, candidates[i].ToViewModel())
					if len(picked) >= limit {
						break
					}
				}
			}
		}

		if len(picked) == 0 {
			// no favorites or no genre matches, fall back to popular movies
			fallback, err := m.movieRepo.GetTopMoviesExcluding(favoriteTmdbIds, limit)
			if err != nil {
				return nil, err
			}
			for i := range fallback {
				picked = append(picked, fallback[i].ToViewModel())
			}
		}

		if picked == nil {
			picked = []model.MovieViewModel{}
		}
		return response.PaginatedResponse{Count: int64(len(picked)), Results: picked}, nil
	})
}

//------------------------------------------
//------------------------------------------

// AddFavorite resolves the movie through the provider when it is not known
// locally, then creates the favorite. Duplicate adds surface as
// ErrAlreadyFavorited through the unique (userId, movieId) constraint.
func (m *MovieService) AddFavorite(ctx context.Context, userId int64, tmdbId int64, notes string) (*model.FavoriteViewModel, error) {
	movie, err := m.resolveMovie(ctx, tmdbId)
	if err != nil {
		return nil, err
	}

	favorite := &model.Favorite{
		UserId:  userId,
		MovieId: movie.Id,
		Notes:   notes,
	}
	if err := m.movieRepo.CreateFavorite(favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}

	m.cacheSvc.InvalidateUserCache(ctx, userId)

	favorite.Movie = *movie
	vm := favorite.ToViewModel()
	return &vm, nil
}

func (m *MovieService) RemoveFavorite(ctx context.Context, userId int64, tmdbId int64) error {
	movie, err := m.movieRepo.GetMovieByTmdbId(tmdbId)
	if err != nil {
		return err
	}
	if movie == nil {
		return ErrFavoriteNotFound
	}

	removed, err := m.movieRepo.RemoveFavorite(userId, movie.Id)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrFavoriteNotFound
	}

	m.cacheSvc.InvalidateUserCache(ctx, userId)
	return nil
}

func (m *MovieService) GetFavorites(ctx context.Context, userId int64, page int, pageSize int, path string) ([]byte, error) {
	params := map[string]string{"page": strconv.Itoa(page), "limit": strconv.Itoa(pageSize)}
	key := m.cacheSvc.BuildKey("favorites", params, userId)

	return m.cacheSvc.GetOrCompute(ctx, key, PersonalizedListingTTL, func() (interface{}, error) {
		favorites, count, err := m.movieRepo.GetFavorites(userId, page, pageSize)
		if err != nil {
			return nil, err
		}
		vms := make([]model.FavoriteViewModel, 0, len(favorites))
		for i := range favorites {
			vms = append(vms, favorites[i].ToViewModel())
		}
		return response.Paginate(path, params, page, response.TotalPages(count, pageSize), count, vms), nil
	})
}

//------------------------------------------
//------------------------------------------

// resolveMovie returns the local movie row, lazily populating it from the
// provider on first reference.
func (m *MovieService) resolveMovie(ctx context.Context, tmdbId int64) (*model.Movie, error) {
	movie, err := m.movieRepo.GetMovieByTmdbId(tmdbId)
	if err != nil {
		return nil, err
	}
	if movie != nil {
		return movie, nil
	}

	providerMovie, err := m.tmdbSvc.FetchMovie(ctx, tmdbId)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	newMovie := providerMovie.ToMovie()
	if err := m.movieRepo.UpsertMovies([]model.Movie{newMovie}); err != nil {
		return nil, err
	}
	movie, err = m.movieRepo.GetMovieByTmdbId(tmdbId)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}
	return movie, nil
}

func (m *MovieService) listingPage(ctx context.Context, endpoint string, path string, params map[string]string, userId int64, fetch func() (*model.ProviderPage, error)) ([]byte, error) {
	key := m.cacheSvc.BuildKey(endpoint, params, userId)
	ttl := m.cacheSvc.ListingTTL(userId != 0)

	return m.cacheSvc.GetOrCompute(ctx, key, ttl, func() (interface{}, error) {
		providerPage, err := fetch()
		if err != nil {
			return nil, err
		}
		m.storeMovies(providerPage.Results)
		vms := m.toViewModels(providerPage.Results, userId)
		return response.Paginate(path, params, providerPage.Page, providerPage.TotalPages, providerPage.TotalResults, vms), nil
	})
}

func (m *MovieService) storeMovies(providerMovies []model.ProviderMovie) {
	if len(providerMovies) == 0 {
		return
	}
	movies := make([]model.Movie, 0, len(providerMovies))
	for i := range providerMovies {
		movies = append(movies, providerMovies[i].ToMovie())
	}
	if err := m.movieRepo.UpsertMovies(movies); err != nil {
		// the response can still be served from provider data
		errorHandler.SaveError(fmt.Sprintf("DB Error on upserting movies: %v", err), err)
	}
}

func (m *MovieService) toViewModels(providerMovies []model.ProviderMovie, userId int64) []model.MovieViewModel {
	vms := make([]model.MovieViewModel, 0, len(providerMovies))
	for i := range providerMovies {
		movie := providerMovies[i].ToMovie()
		vm := movie.ToViewModel()
		vm.Id = 0
		vms = append(vms, vm)
	}
	m.annotateFavorites(vms, userId)
	return vms
}

func (m *MovieService) annotateFavorites(vms []model.MovieViewModel, userId int64) {
	if userId == 0 || len(vms) == 0 {
		return
	}
	tmdbIds := make([]int64, 0, len(vms))
	for i := range vms {
		tmdbIds = append(tmdbIds, vms[i].TmdbId)
	}
	favIds, err := m.movieRepo.GetFavoriteTmdbIds(userId, tmdbIds)
	if err != nil {
		errorHandler.SaveError(fmt.Sprintf("DB Error on reading favorite flags: %v", err), err)
		return
	}
	favSet := make(map[int64]bool, len(favIds))
	for _, id := range favIds {
		favSet[id] = true
	}
	for i := range vms {
		isFavorite := favSet[vms[i].TmdbId]
		vms[i].IsFavorite = &isFavorite
	}
}

func overlaps(a model.Int64List, b model.Int64List) bool {
	set := make(map[int64]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	return overlapsSet(a, set)
}

func overlapsSet(a model.Int64List, set map[int64]bool) bool {
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}
