package repository

import (
	"errors"
	"movie_api/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IMovieRepository interface {
	UpsertMovies(movies []model.Movie) error
	GetMovieByTmdbId(tmdbId int64) (*model.Movie, error)
	GetMovies(page int, pageSize int) ([]model.Movie, int64, error)
	GetTopMoviesExcluding(excludeTmdbIds []int64, limit int) ([]model.Movie, error)
	CreateFavorite(favorite *model.Favorite) error
	RemoveFavorite(userId int64, movieId int64) (int64, error)
	GetFavorites(userId int64, page int, pageSize int) ([]model.Favorite, int64, error)
	GetAllFavorites(userId int64) ([]model.Favorite, error)
	GetFavoriteTmdbIds(userId int64, tmdbIds []int64) ([]int64, error)
}

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

//------------------------------------------
//------------------------------------------

// UpsertMovies inserts provider movies, updating rows that already exist by tmdbId.
func (r *MovieRepository) UpsertMovies(movies []model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tmdbId"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "overview", "releaseDate", "posterPath", "backdropPath",
				"voteAverage", "voteCount", "popularity", "genreIds", "originalLanguage",
				"updatedAt",
			}),
		}).
		Create(&movies).
		Error
}

func (r *MovieRepository) GetMovieByTmdbId(tmdbId int64) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.
		Model(&model.Movie{}).
		Where("\"tmdbId\" = ?", tmdbId).
		First(&movie).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

func (r *MovieRepository) GetMovies(page int, pageSize int) ([]model.Movie, int64, error) {
	var movies []model.Movie
	var count int64

	if err := r.db.Model(&model.Movie{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Model(&model.Movie{}).
		Order("popularity DESC, \"voteAverage\" DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&movies).
		Error
	return movies, count, err
}

func (r *MovieRepository) GetTopMoviesExcluding(excludeTmdbIds []int64, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	query := r.db.
		Model(&model.Movie{}).
		Order("popularity DESC, \"voteAverage\" DESC").
		Limit(limit)
	if len(excludeTmdbIds) > 0 {
		query = query.Where("\"tmdbId\" NOT IN ?", excludeTmdbIds)
	}
	err := query.Find(&movies).Error
	return movies, err
}

//------------------------------------------
//------------------------------------------

func (r *MovieRepository) CreateFavorite(favorite *model.Favorite) error {
	return r.db.Create(favorite).Error
}

func (r *MovieRepository) RemoveFavorite(userId int64, movieId int64) (int64, error) {
	result := r.db.
		Where("\"userId\" = ? AND \"movieId\" = ?", userId, movieId).
		Delete(&model.Favorite{})
	return result.RowsAffected, result.Error
}

func (r *MovieRepository) GetFavorites(userId int64, page int, pageSize int) ([]model.Favorite, int64, error) {
	var favorites []model.Favorite
	var count int64

	if err := r.db.Model(&model.Favorite{}).
		Where("\"userId\" = ?", userId).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Model(&model.Favorite{}).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&favorites).
		Error
	return favorites, count, err
}

func (r *MovieRepository) GetAllFavorites(userId int64) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.
		Model(&model.Favorite{}).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC").
		Find(&favorites).
		Error
	return favorites, err
}

// GetFavoriteTmdbIds returns which of the given tmdbIds the user has favorited.
func (r *MovieRepository) GetFavoriteTmdbIds(userId int64, tmdbIds []int64) ([]int64, error) {
	if len(tmdbIds) == 0 {
		return []int64{}, nil
	}
	var ids []int64
	err := r.db.
		Model(&model.Favorite{}).
		Joins("JOIN \"Movie\" ON \"Movie\".id = \"Favorite\".\"movieId\"").
		Where("\"Favorite\".\"userId\" = ? AND \"Movie\".\"tmdbId\" IN ?", userId, tmdbIds).
		Pluck("\"Movie\".\"tmdbId\"", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
