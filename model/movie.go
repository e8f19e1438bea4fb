package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	PosterBaseUrl   = "https://image.tmdb.org/t/p/w500"
	BackdropBaseUrl = "https://image.tmdb.org/t/p/w1280"
)

// Int64List is stored as a json array, postgres jsonb column.
type Int64List []int64

func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		l = Int64List{}
	}
	return json.Marshal(l)
}

func (l *Int64List) Scan(value interface{}) error {
	if value == nil {
		*l = Int64List{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for Int64List")
}

//------------------------------------------
//------------------------------------------

type Movie struct {
	Id               int64     `gorm:"column:id;type:serial;autoIncrement;primaryKey;" json:"id"`
	TmdbId           int64     `gorm:"column:tmdbId;type:integer;not null;uniqueIndex:Movie_tmdbId_key" json:"tmdbId"`
	Title            string    `gorm:"column:title;type:text;not null;index:Movie_title_idx" json:"title"`
	Overview         string    `gorm:"column:overview;type:text;default:\"\";" json:"overview"`
	ReleaseDate      string    `gorm:"column:releaseDate;type:text;default:\"\";" json:"releaseDate"`
	PosterPath       string    `gorm:"column:posterPath;type:text;default:\"\";" json:"posterPath"`
	BackdropPath     string    `gorm:"column:backdropPath;type:text;default:\"\";" json:"backdropPath"`
	VoteAverage      float64   `gorm:"column:voteAverage;type:decimal(3,1);default:0;" json:"voteAverage"`
	VoteCount        int64     `gorm:"column:voteCount;type:integer;default:0;" json:"voteCount"`
	Popularity       float64   `gorm:"column:popularity;type:decimal(10,2);default:0;index:Movie_popularity_idx" json:"popularity"`
	GenreIds         Int64List `gorm:"column:genreIds;type:jsonb;" json:"genreIds"`
	OriginalLanguage string    `gorm:"column:originalLanguage;type:text;default:\"\";" json:"originalLanguage"`
	CreatedAt        time.Time `gorm:"column:createdAt;type:timestamp(3);not null;default:CURRENT_TIMESTAMP;" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"column:updatedAt;type:timestamp(3);not null;" json:"updatedAt"`
}

func (Movie) TableName() string {
	return "Movie"
}

func (m *Movie) ToViewModel() MovieViewModel {
	vm := MovieViewModel{
		Id:               m.Id,
		TmdbId:           m.TmdbId,
		Title:            m.Title,
		Overview:         m.Overview,
		ReleaseDate:      m.ReleaseDate,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		Popularity:       m.Popularity,
		GenreIds:         m.GenreIds,
		OriginalLanguage: m.OriginalLanguage,
	}
	if m.PosterPath != "" {
		vm.PosterUrl = PosterBaseUrl + m.PosterPath
	}
	if m.BackdropPath != "" {
		vm.BackdropUrl = BackdropBaseUrl + m.BackdropPath
	}
	return vm
}

//------------------------------------------
//------------------------------------------

type MovieViewModel struct {
	Id               int64     `json:"id,omitempty"`
	TmdbId           int64     `json:"tmdbId"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	ReleaseDate      string    `json:"releaseDate"`
	PosterPath       string    `json:"posterPath"`
	BackdropPath     string    `json:"backdropPath"`
	PosterUrl        string    `json:"posterUrl,omitempty"`
	BackdropUrl      string    `json:"backdropUrl,omitempty"`
	VoteAverage      float64   `json:"voteAverage"`
	VoteCount        int64     `json:"voteCount"`
	Popularity       float64   `json:"popularity"`
	GenreIds         Int64List `json:"genreIds"`
	OriginalLanguage string    `json:"originalLanguage"`
	IsFavorite       *bool     `json:"isFavorite,omitempty"`
}

// ProviderMovie is the movie shape returned by tmdb list/search/detail calls.
type ProviderMovie struct {
	Id               int64     `json:"id"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	ReleaseDate      string    `json:"release_date"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int64     `json:"vote_count"`
	Popularity       float64   `json:"popularity"`
	GenreIds         Int64List `json:"genre_ids"`
	OriginalLanguage string    `json:"original_language"`
}

func (p *ProviderMovie) ToMovie() Movie {
	genreIds := p.GenreIds
	if genreIds == nil {
		genreIds = Int64List{}
	}
	return Movie{
		TmdbId:           p.Id,
		Title:            p.Title,
		Overview:         p.Overview,
		ReleaseDate:      p.ReleaseDate,
		PosterPath:       p.PosterPath,
		BackdropPath:     p.BackdropPath,
		VoteAverage:      p.VoteAverage,
		VoteCount:        p.VoteCount,
		Popularity:       p.Popularity,
		GenreIds:         genreIds,
		OriginalLanguage: p.OriginalLanguage,
	}
}

type ProviderPage struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int64           `json:"total_results"`
	Results      []ProviderMovie `json:"results"`
}
