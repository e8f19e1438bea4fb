package model

import "time"

type Favorite struct {
	Id        int64     `gorm:"column:id;type:serial;autoIncrement;primaryKey;" json:"id"`
	UserId    int64     `gorm:"column:userId;type:integer;not null;uniqueIndex:Favorite_userId_movieId_key;index:Favorite_userId_idx" json:"userId"`
	MovieId   int64     `gorm:"column:movieId;type:integer;not null;uniqueIndex:Favorite_userId_movieId_key" json:"movieId"`
	Notes     string    `gorm:"column:notes;type:text;default:\"\";" json:"notes"`
	CreatedAt time.Time `gorm:"column:createdAt;type:timestamp(3);not null;default:CURRENT_TIMESTAMP;" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt;type:timestamp(3);not null;" json:"updatedAt"`

	Movie Movie `gorm:"foreignKey:MovieId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Favorite) TableName() string {
	return "Favorite"
}

func (f *Favorite) ToViewModel() FavoriteViewModel {
	return FavoriteViewModel{
		Id:        f.Id,
		Notes:     f.Notes,
		CreatedAt: f.CreatedAt,
		Movie:     f.Movie.ToViewModel(),
	}
}

//------------------------------------------
//------------------------------------------

type FavoriteViewModel struct {
	Id        int64          `json:"id"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	Movie     MovieViewModel `json:"movie"`
}

type FavoriteRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}
