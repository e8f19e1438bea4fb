package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"movie_api/configs"
	"movie_api/model"
	errorHandler "movie_api/pkg/error"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

var (
	ErrProviderUnavailable = errors.New("movie provider unavailable")
	ErrProviderRateLimited = errors.New("movie provider rate limited")
	ErrInvalidQuery        = errors.New("invalid provider query")
	ErrProviderNotFound    = errors.New("not found on provider")
)

type ITmdbService interface {
	FetchTrending(ctx context.Context, timeWindow string, page int, language string) (*model.ProviderPage, error)
	FetchPopular(ctx context.Context, page int, language string, region string) (*model.ProviderPage, error)
	FetchTopRated(ctx context.Context, page int) (*model.ProviderPage, error)
	FetchUpcoming(ctx context.Context, page int) (*model.ProviderPage, error)
	Search(ctx context.Context, query string, page int, includeAdult bool, year int, language string) (*model.ProviderPage, error)
	FetchMovie(ctx context.Context, tmdbId int64) (*model.ProviderMovie, error)
	FetchRecommendations(ctx context.Context, tmdbId int64, page int) (*model.ProviderPage, error)
}

type TmdbService struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
	retries    uint
	retryDelay time.Duration
}

func NewTmdbService() *TmdbService {
	return &TmdbService{
		baseUrl: configs.GetConfigs().TmdbBaseUrl,
		apiKey:  configs.GetConfigs().TmdbApiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(configs.GetConfigs().TmdbTimeoutSec) * time.Second,
		},
		retries:    2,
		retryDelay: 300 * time.Millisecond,
	}
}

//------------------------------------------
//------------------------------------------

// makeRequest calls one provider endpoint, retrying network errors and 5xx
// responses at most m.retries times with backoff. 4xx responses are never
// retried.
func (m *TmdbService) makeRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", m.apiKey)
	reqUrl := m.baseUrl + endpoint + "?" + params.Encode()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			res, err := m.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
			}
			defer res.Body.Close()

			switch {
			case res.StatusCode >= 500:
				return fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, res.StatusCode)
			case res.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(ErrProviderRateLimited)
			case res.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrProviderNotFound)
			case res.StatusCode >= 400:
				return retry.Unrecoverable(fmt.Errorf("%w: provider returned %d", ErrInvalidQuery, res.StatusCode))
			}

			body, err = io.ReadAll(res.Body)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(m.retries+1),
		retry.Delay(m.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			errorHandler.SaveError(fmt.Sprintf("Tmdb request failed [%v]: %v", endpoint, err), err)
		}
		return nil, err
	}
	return body, nil
}

func (m *TmdbService) fetchPage(ctx context.Context, endpoint string, params url.Values) (*model.ProviderPage, error) {
	body, err := m.makeRequest(ctx, endpoint, params)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			// list endpoints always exist, a 404 means the request was malformed
			return nil, ErrInvalidQuery
		}
		return nil, err
	}
	var page model.ProviderPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &page, nil
}

// fetchMoviePage is fetchPage for endpoints scoped to a single movie, where a
// 404 means the movie itself is unknown.
func (m *TmdbService) fetchMoviePage(ctx context.Context, endpoint string, params url.Values) (*model.ProviderPage, error) {
	body, err := m.makeRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var page model.ProviderPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return &page, nil
}

//------------------------------------------
//------------------------------------------

func (m *TmdbService) FetchTrending(ctx context.Context, timeWindow string, page int, language string) (*model.ProviderPage, error) {
	if timeWindow != "day" && timeWindow != "week" {
		timeWindow = "day"
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if language != "" {
		params.Set("language", language)
	}
	return m.fetchPage(ctx, "/trending/movie/"+timeWindow, params)
}

func (m *TmdbService) FetchPopular(ctx context.Context, page int, language string, region string) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if language != "" {
		params.Set("language", language)
	}
	if region != "" {
		params.Set("region", region)
	}
	return m.fetchPage(ctx, "/movie/popular", params)
}

func (m *TmdbService) FetchTopRated(ctx context.Context, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return m.fetchPage(ctx, "/movie/top_rated", params)
}

func (m *TmdbService) FetchUpcoming(ctx context.Context, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return m.fetchPage(ctx, "/movie/upcoming", params)
}

func (m *TmdbService) Search(ctx context.Context, query string, page int, includeAdult bool, year int, language string) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", strconv.FormatBool(includeAdult))
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if language != "" {
		params.Set("language", language)
	}
	return m.fetchPage(ctx, "/search/movie", params)
}

func (m *TmdbService) FetchRecommendations(ctx context.Context, tmdbId int64, page int) (*model.ProviderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return m.fetchMoviePage(ctx, fmt.Sprintf("/movie/%d/recommendations", tmdbId), params)
}

func (m *TmdbService) FetchMovie(ctx context.Context, tmdbId int64) (*model.ProviderMovie, error) {
	body, err := m.makeRequest(ctx, fmt.Sprintf("/movie/%d", tmdbId), nil)
	if err != nil {
		return nil, err
	}

	// detail responses carry genres as objects, not genre_ids
	var detail struct {
		model.ProviderMovie
		Genres []struct {
			Id int64 `json:"id"`
		} `json:"genres"`
	}
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	movie := detail.ProviderMovie
	if len(movie.GenreIds) == 0 && len(detail.Genres) > 0 {
		for _, g := range detail.Genres {
			movie.GenreIds = append(movie.GenreIds, g.Id)
		}
	}
	return &movie, nil
}
