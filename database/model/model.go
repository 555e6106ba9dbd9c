package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Status is shared by users and login records.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Role      Role      `json:"role" gorm:"size:10;not null;default:user"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Status    Status    `json:"status" gorm:"size:10;not null;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// LoginRecord is one issued token. Records are cascade-deleted with their user.
type LoginRecord struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId         int       `json:"user_id" gorm:"index;not null"`
	User           *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Token          string    `json:"-" gorm:"size:512;uniqueIndex;not null"`
	Status         Status    `json:"status" gorm:"size:10;not null;default:active"`
	CreatedAt      time.Time `json:"created_at"`
	ExpirationDate time.Time `json:"expiration_date"`
}

type Movie struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null;index"`
	Description string    `json:"description"`
	Genre       string    `json:"genre" gorm:"size:100"`
	Language    string    `json:"language" gorm:"size:50"`
	Director    string    `json:"director" gorm:"size:100"`
	CastMembers string    `json:"cast"`
	ReleaseYear int       `json:"release_year"`
	PosterUrl   string    `json:"poster_url"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`
	Approved    bool      `json:"approved" gorm:"not null;default:false"`
	CreatedBy   int       `json:"created_by" gorm:"index;not null"`
	Creator     *User     `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Review struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	MovieId        int       `json:"movie_id" gorm:"not null;index;uniqueIndex:idx_review_user_movie,priority:2"`
	Movie          *Movie    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserId         int       `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_movie,priority:1"`
	User           *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Rating         float64   `json:"rating" gorm:"not null;check:chk_review_rating,rating >= 0 AND rating <= 10"`
	Comment        *string   `json:"comment"`
	LikeCount      int       `json:"like_count" gorm:"not null;default:0"`
	SentimentScore *float64  `json:"sentiment_score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ReviewLike struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewId  int       `json:"review_id" gorm:"not null;uniqueIndex:idx_review_like_user,priority:1"`
	Review    *Review   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserId    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_review_like_user,priority:2"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewHistory keeps the previous rating and comment of an edited review.
type ReviewHistory struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewId   int       `json:"review_id" gorm:"not null;index"`
	Review     *Review   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserId     int       `json:"user_id" gorm:"not null"`
	OldRating  float64   `json:"old_rating"`
	OldComment *string   `json:"old_comment"`
	ChangedAt  time.Time `json:"changed_at" gorm:"autoCreateTime"`
}

type UserActivityLog struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId      int       `json:"user_id" gorm:"not null;index"`
	User        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ActionType  string    `json:"action_type" gorm:"size:100;index"`
	Resource    string    `json:"resource" gorm:"size:255"`
	Description string    `json:"description"`
	IP          string    `json:"ip" gorm:"size:64"`
	UserAgent   string    `json:"user_agent"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

type Watchlist struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int       `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	MovieId   int       `json:"movie_id" gorm:"not null"`
	Movie     *Movie    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

type Platform struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Type      string    `json:"type" gorm:"size:50"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
}

type Region struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Code      string    `json:"code" gorm:"size:50;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

type MovieAvailability struct {
	Id               int        `json:"id" gorm:"primaryKey;autoIncrement"`
	MovieId          int        `json:"movie_id" gorm:"not null;index"`
	Movie            *Movie     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	PlatformId       int        `json:"platform_id" gorm:"not null"`
	Platform         *Platform  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RegionId         int        `json:"region_id" gorm:"not null"`
	Region           *Region    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AvailabilityType string     `json:"availability_type" gorm:"size:50"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Url              string     `json:"url"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Recommendation struct {
	Id                 int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId             int       `json:"user_id" gorm:"not null;index"`
	User               *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RecommendedMovieId int       `json:"recommended_movie_id" gorm:"not null"`
	RecommendedMovie   *Movie    `json:"-" gorm:"foreignKey:RecommendedMovieId;constraint:OnDelete:CASCADE"`
	Reason             string    `json:"reason"`
	CreatedAt          time.Time `json:"created_at"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&LoginRecord{},
		&Movie{},
		&Review{},
		&ReviewLike{},
		&ReviewHistory{},
		&UserActivityLog{},
		&Watchlist{},
		&Platform{},
		&Region{},
		&MovieAvailability{},
		&Recommendation{},
	}
}
