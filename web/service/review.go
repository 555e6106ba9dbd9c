package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/cinerate/cinerate/database"
	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"

	"github.com/op/go-logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinRating        = 0
	MaxRating        = 10
	MaxCommentLength = 2000
)

var (
	ErrReviewNotFound   = common.NewNotFound("Review not found")
	ErrAlreadyReviewed  = common.NewBadRequest("You already reviewed this movie")
	ErrRatingOutOfRange = common.NewBadRequest("Rating must be between 0 and 10")
	ErrCommentTooLong   = common.NewBadRequest("Comment must be at most 2000 characters")
)

var reviewSortColumns = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"rating":     "rating",
	"like_count": "like_count",
	"helpful":    "like_count",
}

type ReviewQuery struct {
	Page       int
	Size       int
	RatingFrom float64
	UserId     int
	Sort       string
	Order      string
}

type ReviewPage struct {
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
	Reviews []model.Review `json:"reviews"`
}

type LikeResult struct {
	Message   string `json:"message"`
	LikeCount int    `json:"like_count"`
}

type ReviewService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewService(db *gorm.DB, log *logger.Logger) *ReviewService {
	return &ReviewService{db: db, log: log}
}

// AddReview stores the user's review of a movie and refreshes the movie's
// average rating in the same transaction.
func (s *ReviewService) AddReview(ctx context.Context, userID, movieID, rating int, comment *string) (*model.Review, error) {
	if err := checkRating(rating); err != nil {
		return nil, err
	}
	comment, err := normalizeComment(comment)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		MovieId:        movieID,
		UserId:         userID,
		Rating:         float64(rating),
		Comment:        comment,
		SentimentScore: sentimentOf(comment),
	}
	var avg float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movies int64
		if err := tx.Model(&model.Movie{}).Where("id = ?", movieID).Count(&movies).Error; err != nil {
			return err
		}
		if movies == 0 {
			return ErrMovieNotFound
		}

		var existing int64
		err := tx.Model(&model.Review{}).
			Where("user_id = ? AND movie_id = ?", userID, movieID).
			Count(&existing).
			Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReviewed
		}

		if err := tx.Create(review).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return err
		}
		avg, err = recalcMovieRating(tx, movieID)
		return err
	})
	if err != nil {
		return nil, classify(err, "add review")
	}

	s.log.Event(logging.INFO, "review_created", "review_id", review.Id, "user_id", userID, "movie_id", movieID, "movie_rating", avg)
	return review, nil
}

// UpdateReview edits a review owned by userID. The previous rating and
// comment are kept in the review history.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, userID int, rating *int, comment *string) (*model.Review, error) {
	if rating != nil {
		if err := checkRating(*rating); err != nil {
			return nil, err
		}
	}
	comment, err := normalizeComment(comment)
	if err != nil {
		return nil, err
	}

	review := &model.Review{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(review).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return err
		}

		history := &model.ReviewHistory{
			ReviewId:   review.Id,
			UserId:     userID,
			OldRating:  review.Rating,
			OldComment: review.Comment,
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if rating != nil {
			review.Rating = float64(*rating)
			updates["rating"] = review.Rating
		}
		if comment != nil {
			review.Comment = comment
			review.SentimentScore = sentimentOf(comment)
			updates["comment"] = *review.Comment
			updates["sentiment_score"] = review.SentimentScore
		}
		if len(updates) > 0 {
			if err := tx.Model(review).Updates(updates).Error; err != nil {
				return err
			}
		}
		_, err := recalcMovieRating(tx, review.MovieId)
		return err
	})
	if err != nil {
		return nil, classify(err, "update review")
	}

	s.log.Event(logging.INFO, "review_updated", "review_id", reviewID, "user_id", userID)
	return review, nil
}

// DeleteReview removes a review owned by userID.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review := &model.Review{}
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(review).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return err
		}
		if err := tx.Delete(review).Error; err != nil {
			return err
		}
		_, err := recalcMovieRating(tx, review.MovieId)
		return err
	})
	if err != nil {
		return classify(err, "delete review")
	}

	s.log.Event(logging.INFO, "review_deleted", "review_id", reviewID, "user_id", userID)
	return nil
}

// ListByMovie pages through a movie's reviews. Unknown sort keys fall back
// to created_at; order is descending unless "asc" is requested.
func (s *ReviewService) ListByMovie(ctx context.Context, movieID int, q ReviewQuery) (*ReviewPage, error) {
	page, size := normalizePage(q.Page, q.Size)

	query := s.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("movie_id = ?", movieID)
	if q.RatingFrom > 0 {
		query = query.Where("rating >= ?", q.RatingFrom)
	}
	if q.UserId > 0 {
		query = query.Where("user_id = ?", q.UserId)
	}
	query = query.Session(&gorm.Session{})

	result := &ReviewPage{Page: page, Size: size, Reviews: []model.Review{}}
	if err := query.Count(&result.Total).Error; err != nil {
		return nil, common.Wrap(err, "count reviews")
	}

	column, ok := reviewSortColumns[q.Sort]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(q.Order, "asc")
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Offset((page - 1) * size).
		Limit(size).
		Find(&result.Reviews).
		Error
	if err != nil {
		return nil, common.Wrap(err, "list reviews")
	}
	return result, nil
}

// LikeReview records userID's like of a review once; repeated likes are
// reported but not counted.
func (s *ReviewService) LikeReview(ctx context.Context, reviewID, userID int) (*LikeResult, error) {
	result := &LikeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review := &model.Review{}
		if err := tx.First(review, reviewID).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return err
		}

		var liked int64
		err := tx.Model(&model.ReviewLike{}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			Count(&liked).
			Error
		if err != nil {
			return err
		}
		if liked > 0 {
			result.Message = "Already liked"
			result.LikeCount = review.LikeCount
			return nil
		}

		if err := tx.Create(&model.ReviewLike{ReviewId: reviewID, UserId: userID}).Error; err != nil {
			return err
		}
		err = tx.Model(review).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).
			Error
		if err != nil {
			return err
		}
		result.Message = "Review liked"
		return tx.Model(&model.Review{}).
			Where("id = ?", reviewID).
			Select("like_count").
			Scan(&result.LikeCount).
			Error
	})
	if err != nil {
		return nil, classify(err, "like review")
	}

	s.log.Event(logging.INFO, "review_liked", "review_id", reviewID, "user_id", userID, "like_count", result.LikeCount, "new", result.Message == "Review liked")
	return result, nil
}

// recalcMovieRating stores the average rating of the movie's reviews, or 0
// when it has none.
func recalcMovieRating(tx *gorm.DB, movieID int) (float64, error) {
	var avg float64
	err := tx.Model(&model.Review{}).
		Where("movie_id = ?", movieID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).
		Error
	if err != nil {
		return 0, err
	}
	err = tx.Model(&model.Movie{}).
		Where("id = ?", movieID).
		UpdateColumn("rating", avg).
		Error
	return avg, err
}

// recountLikes resets the review's like_count from its review_likes rows.
func recountLikes(tx *gorm.DB, reviewID int) error {
	var n int64
	if err := tx.Model(&model.ReviewLike{}).Where("review_id = ?", reviewID).Count(&n).Error; err != nil {
		return err
	}
	return tx.Model(&model.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("like_count", n).
		Error
}

func checkRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

func normalizeComment(comment *string) (*string, error) {
	if comment == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*comment)
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	return &trimmed, nil
}

func sentimentOf(comment *string) *float64 {
	if comment == nil {
		return nil
	}
	return SentimentScore(*comment)
}

// classify passes classified errors through and wraps everything else as
// internal.
func classify(err error, msg string) error {
	var e *common.Error
	if errors.As(err, &e) {
		return err
	}
	return common.Wrap(err, msg)
}
