package model

import "time"

type User struct {
	UserId    int64     `gorm:"column:userId;type:serial;autoIncrement;primaryKey;" json:"userId"`
	Username  string    `gorm:"column:username;type:text;not null;uniqueIndex:User_username_key" json:"username"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex:User_email_key" json:"email"`
	Password  string    `gorm:"column:password;type:text;not null;" json:"-"`
	CreatedAt time.Time `gorm:"column:createdAt;type:timestamp(3);not null;default:CURRENT_TIMESTAMP;" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt;type:timestamp(3);not null;" json:"updatedAt"`

	Favorites []Favorite `gorm:"foreignKey:UserId;references:UserId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (User) TableName() string {
	return "User"
}

//------------------------------------------
//------------------------------------------

type UserViewModel struct {
	UserId   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) ToViewModel() UserViewModel {
	return UserViewModel{
		UserId:   u.UserId,
		Username: u.Username,
		Email:    u.Email,
	}
}

//------------------------------------------
//------------------------------------------

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AuthResult struct {
	User   UserViewModel `json:"user"`
	Tokens TokenPair     `json:"tokens"`
}
