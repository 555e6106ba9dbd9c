// Package entity defines the request and response bodies of the web layer.
package entity

import (
	"time"

	"github.com/cinerate/cinerate/database/model"
)

// Msg is the envelope of error and confirmation responses.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj,omitempty"`
}

type RegisterForm struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Role     string `json:"role"`
	Password string `json:"password" binding:"required"`
}

type LoginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserForm is used by both the self and the admin update. Empty
// fields keep their current value.
type UpdateUserForm struct {
	Username string `json:"username" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type RoleForm struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

type MovieForm struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Genre       string `json:"genre" binding:"max=100"`
	Language    string `json:"language" binding:"max=50"`
	Director    string `json:"director" binding:"max=100"`
	Cast        string `json:"cast"`
	ReleaseYear int    `json:"release_year" binding:"omitempty,min=1870,max=3000"`
	PosterUrl   string `json:"poster_url" binding:"omitempty,url"`
}

type ReviewForm struct {
	MovieId int     `json:"movie_id" binding:"required,min=1"`
	Rating  *int    `json:"rating" binding:"required,min=0,max=10"`
	Comment *string `json:"comment"`
}

type ReviewUpdateForm struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=0,max=10"`
	Comment *string `json:"comment"`
}

// Profile is the public projection of a user.
type Profile struct {
	Id       int          `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     model.Role   `json:"role"`
	Status   model.Status `json:"status"`
}

func NewProfile(u *model.User) Profile {
	return Profile{Id: u.Id, Username: u.Username, Email: u.Email, Role: u.Role, Status: u.Status}
}

type UserListItem struct {
	Profile
	CreatedAt time.Time `json:"created_at"`
}

type UpdatedUser struct {
	Id        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int     `json:"expires_in"`
	User        Profile `json:"user"`
}

type SessionItem struct {
	Id             int          `json:"id"`
	Status         model.Status `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ExpirationDate time.Time    `json:"expiration_date"`
	Current        bool         `json:"current"`
}

type ReviewUpdated struct {
	UserId  int     `json:"user_id"`
	MovieId int     `json:"movie_id"`
	Comment *string `json:"comment"`
	Rating  float64 `json:"rating"`
}
