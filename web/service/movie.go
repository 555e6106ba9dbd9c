package service

import (
	"context"
	"strings"

	"github.com/cinerate/cinerate/database"
	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"

	"github.com/op/go-logging"
	"gorm.io/gorm"
)

var (
	ErrMovieNotFound = common.NewNotFound("Movie not found")
	ErrMovieTitle    = common.NewBadRequest("Movie title is required")
)

type MovieInput struct {
	Title       string
	Description string
	Genre       string
	Language    string
	Director    string
	Cast        string
	ReleaseYear int
	PosterUrl   string
}

type MoviePage struct {
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Size   int           `json:"size"`
	Movies []model.Movie `json:"movies"`
}

type MovieService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMovieService(db *gorm.DB, log *logger.Logger) *MovieService {
	return &MovieService{db: db, log: log}
}

func (s *MovieService) CreateMovie(ctx context.Context, creatorID int, in MovieInput) (*model.Movie, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrMovieTitle
	}
	movie := &model.Movie{
		Title:       title,
		Description: in.Description,
		Genre:       in.Genre,
		Language:    in.Language,
		Director:    in.Director,
		CastMembers: in.Cast,
		ReleaseYear: in.ReleaseYear,
		PosterUrl:   in.PosterUrl,
		CreatedBy:   creatorID,
	}
	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		return nil, common.Wrap(err, "create movie")
	}
	s.log.Event(logging.INFO, "movie_created", "movie_id", movie.Id, "created_by", creatorID)
	return movie, nil
}

func (s *MovieService) GetMovie(ctx context.Context, id int) (*model.Movie, error) {
	movie := &model.Movie{}
	err := s.db.WithContext(ctx).First(movie, id).Error
	if database.IsNotFound(err) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, common.Wrap(err, "load movie")
	}
	return movie, nil
}

func (s *MovieService) ListMovies(ctx context.Context, page, size int) (*MoviePage, error) {
	page, size = normalizePage(page, size)
	q := s.db.WithContext(ctx).Model(&model.Movie{}).Session(&gorm.Session{})

	result := &MoviePage{Page: page, Size: size, Movies: []model.Movie{}}
	if err := q.Count(&result.Total).Error; err != nil {
		return nil, common.Wrap(err, "count movies")
	}
	err := q.Order("id").
		Offset((page - 1) * size).
		Limit(size).
		Find(&result.Movies).
		Error
	if err != nil {
		return nil, common.Wrap(err, "list movies")
	}
	return result, nil
}

const maxPageSize = 100

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return page, min(size, maxPageSize)
}
