package service

import (
	"context"
	"encoding/json"
	"movie_api/model"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMovieRepo struct {
	movies    map[int64]*model.Movie // keyed by tmdbId
	favorites []model.Favorite

	nextMovieId    int64
	nextFavoriteId int64

	favoritesListCalls int
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[int64]*model.Movie)}
}

func (r *fakeMovieRepo) UpsertMovies(movies []model.Movie) error {
	for i := range movies {
		if existing, ok := r.movies[movies[i].TmdbId]; ok {
			id := existing.Id
			updated := movies[i]
			updated.Id = id
			r.movies[movies[i].TmdbId] = &updated
			continue
		}
		r.nextMovieId++
		inserted := movies[i]
		inserted.Id = r.nextMovieId
		r.movies[movies[i].TmdbId] = &inserted
	}
	return nil
}

func (r *fakeMovieRepo) GetMovieByTmdbId(tmdbId int64) (*model.Movie, error) {
	movie, ok := r.movies[tmdbId]
	if !ok {
		return nil, nil
	}
	copied := *movie
	return &copied, nil
}

func (r *fakeMovieRepo) GetMovies(page int, pageSize int) ([]model.Movie, int64, error) {
	all := r.sortedMovies()
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeMovieRepo) GetTopMoviesExcluding(excludeTmdbIds []int64, limit int) ([]model.Movie, error) {
	excluded := make(map[int64]bool, len(excludeTmdbIds))
	for _, id := range excludeTmdbIds {
		excluded[id] = true
	}
	var result []model.Movie
	for _, movie := range r.sortedMovies() {
		if excluded[movie.TmdbId] {
			continue
		}
		result = append(result, movie)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeMovieRepo) sortedMovies() []model.Movie {
	all := make([]model.Movie, 0, len(r.movies))
	for _, movie := range r.movies {
		all = append(all, *movie)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Popularity > all[j].Popularity
	})
	return all
}

func (r *fakeMovieRepo) CreateFavorite(favorite *model.Favorite) error {
	for i := range r.favorites {
		if r.favorites[i].UserId == favorite.UserId && r.favorites[i].MovieId == favorite.MovieId {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextFavoriteId++
	favorite.Id = r.nextFavoriteId
	favorite.CreatedAt = time.Now()
	r.favorites = append(r.favorites, *favorite)
	return nil
}

func (r *fakeMovieRepo) RemoveFavorite(userId int64, movieId int64) (int64, error) {
	for i := range r.favorites {
		if r.favorites[i].UserId == userId && r.favorites[i].MovieId == movieId {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeMovieRepo) GetFavorites(userId int64, page int, pageSize int) ([]model.Favorite, int64, error) {
	r.favoritesListCalls++
	all, err := r.GetAllFavorites(userId)
	if err != nil {
		return nil, 0, err
	}
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeMovieRepo) GetAllFavorites(userId int64) ([]model.Favorite, error) {
	var result []model.Favorite
	// newest first, favorites are appended in creation order
	for i := len(r.favorites) - 1; i >= 0; i-- {
		if r.favorites[i].UserId != userId {
			continue
		}
		favorite := r.favorites[i]
		for _, movie := range r.movies {
			if movie.Id == favorite.MovieId {
				favorite.Movie = *movie
				break
			}
		}
		result = append(result, favorite)
	}
	return result, nil
}

func (r *fakeMovieRepo) GetFavoriteTmdbIds(userId int64, tmdbIds []int64) ([]int64, error) {
	wanted := make(map[int64]bool, len(tmdbIds))
	for _, id := range tmdbIds {
		wanted[id] = true
	}
	var result []int64
	for i := range r.favorites {
		if r.favorites[i].UserId != userId {
			continue
		}
		for _, movie := range r.movies {
			if movie.Id == r.favorites[i].MovieId && wanted[movie.TmdbId] {
				result = append(result, movie.TmdbId)
			}
		}
	}
	return result, nil
}

//------------------------------------------
//------------------------------------------

type fakeTmdbService struct {
	page  *model.ProviderPage
	movie *model.ProviderMovie
	err   error

	fetchCalls int
}

func (f *fakeTmdbService) fetch() (*model.ProviderPage, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeTmdbService) FetchTrending(ctx context.Context, timeWindow string, page int, language string) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) FetchPopular(ctx context.Context, page int, language string, region string) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) FetchTopRated(ctx context.Context, page int) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) FetchUpcoming(ctx context.Context, page int) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) Search(ctx context.Context, query string, page int, includeAdult bool, year int, language string) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) FetchRecommendations(ctx context.Context, tmdbId int64, page int) (*model.ProviderPage, error) {
	return f.fetch()
}

func (f *fakeTmdbService) FetchMovie(ctx context.Context, tmdbId int64) (*model.ProviderMovie, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.movie == nil || f.movie.Id != tmdbId {
		return nil, ErrProviderNotFound
	}
	return f.movie, nil
}

//------------------------------------------
//------------------------------------------

func newTestMovieService(repo *fakeMovieRepo, tmdb *fakeTmdbService) *MovieService {
	return NewMovieService(repo, tmdb, NewCacheService(newFakeStore()))
}

func seedMovie(repo *fakeMovieRepo, tmdbId int64, title string, popularity float64, genreIds ...int64) {
	_ = repo.UpsertMovies([]model.Movie{{
		TmdbId:     tmdbId,
		Title:      title,
		Popularity: popularity,
		GenreIds:   genreIds,
	}})
}

type favoritesPage struct {
	Count   int64                     `json:"count"`
	Results []model.FavoriteViewModel `json:"results"`
}

type moviesPage struct {
	Count   int64                  `json:"count"`
	Results []model.MovieViewModel `json:"results"`
}

func TestAddFavoriteThenListContainsItOnce(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28, 878)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	vm, err := svc.AddFavorite(context.Background(), 1, 603, "rewatch soon")
	require.NoError(t, err)
	assert.Equal(t, "rewatch soon", vm.Notes)
	assert.Equal(t, int64(603), vm.Movie.TmdbId)

	payload, err := svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)

	var page favoritesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(603), page.Results[0].Movie.TmdbId)
}

func TestAddFavoriteTwiceReturnsConflict(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	_, err = svc.AddFavorite(context.Background(), 1, 603, "")
	assert.ErrorIs(t, err, ErrAlreadyFavorited)
}

func TestAddFavoriteResolvesUnknownMovieFromProvider(t *testing.T) {
	repo := newFakeMovieRepo()
	tmdb := &fakeTmdbService{
		movie: &model.ProviderMovie{Id: 27205, Title: "Inception", GenreIds: model.Int64List{28, 878}},
	}
	svc := newTestMovieService(repo, tmdb)

	vm, err := svc.AddFavorite(context.Background(), 1, 27205, "")
	require.NoError(t, err)
	assert.Equal(t, "Inception", vm.Movie.Title)

	stored, err := repo.GetMovieByTmdbId(27205)
	require.NoError(t, err)
	require.NotNil(t, stored, "resolved movie must be persisted locally")
}

func TestAddFavoriteUnknownMovieNotOnProvider(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 999999, "")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestRemoveFavorite(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFavorite(context.Background(), 1, 603))

	payload, err := svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)
	var page favoritesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(0), page.Count)
	assert.Empty(t, page.Results)
}

func TestRemoveFavoriteNotFavorited(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	err := svc.RemoveFavorite(context.Background(), 1, 603)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)

	err = svc.RemoveFavorite(context.Background(), 1, 999999)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestFavoritesAreScopedPerUser(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	payload, err := svc.GetFavorites(context.Background(), 2, 1, 20, "/v1/favorites")
	require.NoError(t, err)
	var page favoritesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(0), page.Count)
}

//------------------------------------------
//------------------------------------------

func TestFavoriteMutationInvalidatesCachedList(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	seedMovie(repo, 27205, "Inception", 70, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	payload, err := svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)
	var page favoritesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Equal(t, int64(1), page.Count)

	_, err = svc.AddFavorite(context.Background(), 1, 27205, "")
	require.NoError(t, err)

	payload, err = svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(2), page.Count, "add must invalidate the cached favorites list")
}

func TestFavoritesListIsCachedBetweenReads(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	_, err = svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)
	_, err = svc.GetFavorites(context.Background(), 1, 1, 20, "/v1/favorites")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.favoritesListCalls, "second read must hit the cache")
}

func TestTrendingSecondReadServedFromCache(t *testing.T) {
	repo := newFakeMovieRepo()
	tmdb := &fakeTmdbService{
		page: &model.ProviderPage{
			Page:         1,
			TotalPages:   1,
			TotalResults: 1,
			Results:      []model.ProviderMovie{{Id: 603, Title: "The Matrix", Popularity: 80}},
		},
	}
	svc := newTestMovieService(repo, tmdb)

	params := ListingParams{Page: 1, TimeWindow: "day"}
	first, err := svc.GetTrending(context.Background(), params, 0, "/v1/movies/trending")
	require.NoError(t, err)
	second, err := svc.GetTrending(context.Background(), params, 0, "/v1/movies/trending")
	require.NoError(t, err)

	assert.Equal(t, 1, tmdb.fetchCalls)
	assert.JSONEq(t, string(first), string(second))
}

func TestTrendingStoresProviderMoviesLocally(t *testing.T) {
	repo := newFakeMovieRepo()
	tmdb := &fakeTmdbService{
		page: &model.ProviderPage{
			Page:    1,
			Results: []model.ProviderMovie{{Id: 603, Title: "The Matrix"}, {Id: 27205, Title: "Inception"}},
		},
	}
	svc := newTestMovieService(repo, tmdb)

	_, err := svc.GetTrending(context.Background(), ListingParams{Page: 1, TimeWindow: "day"}, 0, "/v1/movies/trending")
	require.NoError(t, err)

	assert.Len(t, repo.movies, 2)
}

func TestSearchEmptyQuerySkipsProvider(t *testing.T) {
	repo := newFakeMovieRepo()
	tmdb := &fakeTmdbService{}
	svc := newTestMovieService(repo, tmdb)

	payload, err := svc.Search(context.Background(), ListingParams{Page: 1}, 0, "/v1/movies/search")
	require.NoError(t, err)

	var page moviesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(0), page.Count)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, tmdb.fetchCalls)
}

func TestListingAnnotatesFavoritesForAuthenticatedUser(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	tmdb := &fakeTmdbService{
		page: &model.ProviderPage{
			Page:         1,
			TotalPages:   1,
			TotalResults: 2,
			Results:      []model.ProviderMovie{{Id: 603, Title: "The Matrix"}, {Id: 27205, Title: "Inception"}},
		},
	}
	svc := newTestMovieService(repo, tmdb)

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	payload, err := svc.GetPopular(context.Background(), ListingParams{Page: 1}, 1, "/v1/movies/popular")
	require.NoError(t, err)

	var page moviesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Len(t, page.Results, 2)

	byTmdbId := make(map[int64]model.MovieViewModel, len(page.Results))
	for _, vm := range page.Results {
		byTmdbId[vm.TmdbId] = vm
	}
	require.NotNil(t, byTmdbId[603].IsFavorite)
	assert.True(t, *byTmdbId[603].IsFavorite)
	require.NotNil(t, byTmdbId[27205].IsFavorite)
	assert.False(t, *byTmdbId[27205].IsFavorite)
}

//------------------------------------------
//------------------------------------------

func TestGetSimilarFallsBackToLocalGenresWhenProviderDown(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28, 878)
	seedMovie(repo, 27205, "Inception", 70, 28)
	seedMovie(repo, 19404, "DDLJ", 60, 10749)
	tmdb := &fakeTmdbService{err: ErrProviderUnavailable}
	svc := newTestMovieService(repo, tmdb)

	payload, err := svc.GetSimilar(context.Background(), 603, 1, 0, "/v1/movies/603/similar")
	require.NoError(t, err)

	var page moviesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(27205), page.Results[0].TmdbId)
}

func TestGetSimilarUnknownMovie(t *testing.T) {
	repo := newFakeMovieRepo()
	tmdb := &fakeTmdbService{err: ErrProviderNotFound}
	svc := newTestMovieService(repo, tmdb)

	_, err := svc.GetSimilar(context.Background(), 999999, 1, 0, "/v1/movies/999999/similar")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestRecommendationsMatchFavoriteGenres(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 878)
	seedMovie(repo, 157336, "Interstellar", 75, 878)
	seedMovie(repo, 19404, "DDLJ", 90, 10749)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	payload, err := svc.GetRecommendations(context.Background(), 1, 10)
	require.NoError(t, err)

	var page moviesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Len(t, page.Results, 1, "only genre matches, favorite itself excluded")
	assert.Equal(t, int64(157336), page.Results[0].TmdbId)
}

func TestRecommendationsFallBackToPopularWithoutFavorites(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 19404, "DDLJ", 90, 10749)
	seedMovie(repo, 603, "The Matrix", 80, 878)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	payload, err := svc.GetRecommendations(context.Background(), 1, 10)
	require.NoError(t, err)

	var page moviesPage
	require.NoError(t, json.Unmarshal(payload, &page))
	require.Len(t, page.Results, 2)
	assert.Equal(t, int64(19404), page.Results[0].TmdbId, "ordered by popularity")
}

func TestGetMovieDetailAnnotatesFavorite(t *testing.T) {
	repo := newFakeMovieRepo()
	seedMovie(repo, 603, "The Matrix", 80, 28)
	svc := newTestMovieService(repo, &fakeTmdbService{})

	_, err := svc.AddFavorite(context.Background(), 1, 603, "")
	require.NoError(t, err)

	payload, err := svc.GetMovieDetail(context.Background(), 603, 1)
	require.NoError(t, err)

	var vm model.MovieViewModel
	require.NoError(t, json.Unmarshal(payload, &vm))
	assert.Equal(t, int64(603), vm.TmdbId)
	require.NotNil(t, vm.IsFavorite)
	assert.True(t, *vm.IsFavorite)
}
