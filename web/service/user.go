package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cinerate/cinerate/database"
	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"
	"github.com/cinerate/cinerate/util/crypto"

	"github.com/op/go-logging"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = common.NewNotFound("User not found")
	ErrEmailTaken    = common.NewBadRequest("Email already exists")
	ErrUsernameTaken = common.NewBadRequest("Username already exists")
	ErrAccountTaken  = common.NewBadRequest("Email or username already exists")
	ErrWeakPassword  = common.NewBadRequest(crypto.WeakPasswordMessage)
	ErrLongPassword  = common.NewBadRequest("Password must be at most 72 bytes")
	ErrInvalidRole   = common.NewBadRequest("Role must be 'admin' or 'user'")
	ErrRoleChange    = common.NewForbidden("Cannot change the role")
)

// UserInput carries the writable fields of a user. Empty fields are left
// unchanged by UpdateUser.
type UserInput struct {
	Username string
	Email    string
	Role     model.Role
	Password string
}

// UserService is the identity store.
type UserService struct {
	db         *gorm.DB
	log        *logger.Logger
	bcryptCost int
}

func NewUserService(db *gorm.DB, log *logger.Logger, bcryptCost int) *UserService {
	return &UserService{db: db, log: log, bcryptCost: bcryptCost}
}

func (s *UserService) GetUser(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, common.Wrap(err, "load user")
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, common.Wrap(err, "load user by email")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, common.Wrap(err, "list users")
	}
	return users, nil
}

// CreateUser registers a new account. Role defaults to user.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	db := s.db.WithContext(ctx)
	if err := checkTaken(db, 0, in); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Role:     in.Role,
		Password: hash,
		Status:   model.StatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflictOf(db, 0, in)
		}
		return nil, common.Wrap(err, "create user")
	}

	s.log.Event(logging.INFO, "user_registered", "user_id", user.Id, "username", user.Username, "role", user.Role)
	return user, nil
}

// UpdateUser applies a general profile update. A role that differs from the
// stored one is refused; roles only change through ChangeRole.
func (s *UserService) UpdateUser(ctx context.Context, id int, in UserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != "" && in.Role != user.Role {
		s.log.Event(logging.WARNING, "role_change_refused", "user_id", id, "from", user.Role, "to", in.Role)
		return nil, ErrRoleChange
	}

	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	db := s.db.WithContext(ctx)
	if err := checkTaken(db, id, in); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Username != "" {
		updates["username"] = in.Username
	}
	if in.Email != "" {
		updates["email"] = in.Email
	}
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflictOf(db, id, in)
		}
		return nil, common.Wrap(err, "update user")
	}
	s.log.Event(logging.INFO, "user_updated", "user_id", id)
	return s.GetUser(ctx, id)
}

// ChangeRole is the only operation that alters a user's role.
func (s *UserService) ChangeRole(ctx context.Context, id int, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, common.Wrap(err, "change role")
	}
	user.Role = role
	s.log.Event(logging.NOTICE, "role_changed", "user_id", id, "role", role)
	return user, nil
}

// DeleteUser removes the user together with its login records, reviews and
// likes, and returns the deleted row. Ratings of the movies it reviewed and
// like counts of the reviews it liked are recomputed in the same transaction.
func (s *UserService) DeleteUser(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(user, id).Error; err != nil {
			return err
		}

		var movieIDs, reviewIDs []int
		if err := tx.Model(&model.Review{}).Where("user_id = ?", id).Distinct().Pluck("movie_id", &movieIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ReviewLike{}).Where("user_id = ?", id).Distinct().Pluck("review_id", &reviewIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&model.LoginRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ReviewLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return err
		}

		for _, mid := range movieIDs {
			if _, err := recalcMovieRating(tx, mid); err != nil {
				return err
			}
		}
		for _, rid := range reviewIDs {
			if err := recountLikes(tx, rid); err != nil {
				return err
			}
		}
		return nil
	})
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, common.Wrap(err, "delete user")
	}
	s.log.Event(logging.NOTICE, "user_deleted", "user_id", id, "username", user.Username)
	return user, nil
}

// BootstrapAdmin creates an admin account unless one already exists.
func (s *UserService) BootstrapAdmin(ctx context.Context, username, email, password string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error
	if err != nil {
		return false, common.Wrap(err, "count admins")
	}
	if count > 0 {
		return false, nil
	}
	_, err = s.CreateUser(ctx, UserInput{Username: username, Email: email, Role: model.RoleAdmin, Password: password})
	if err != nil {
		return false, err
	}
	return true, nil
}

// checkTaken reports whether the email or username of in belongs to a user
// other than selfID.
func checkTaken(db *gorm.DB, selfID int, in UserInput) error {
	taken := func(column, value string) (bool, error) {
		if value == "" {
			return false, nil
		}
		var count int64
		err := db.Model(&model.User{}).Where(column+" = ? AND id <> ?", value, selfID).Count(&count).Error
		return count > 0, err
	}

	if ok, err := taken("email", in.Email); err != nil {
		return common.Wrap(err, "check email")
	} else if ok {
		return ErrEmailTaken
	}
	if ok, err := taken("username", in.Username); err != nil {
		return common.Wrap(err, "check username")
	} else if ok {
		return ErrUsernameTaken
	}
	return nil
}

// conflictOf names the column behind a unique violation that slipped past
// checkTaken.
func conflictOf(db *gorm.DB, selfID int, in UserInput) error {
	err := checkTaken(db, selfID, in)
	if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
		return err
	}
	return ErrAccountTaken
}

func (s *UserService) hashPassword(password string) (string, error) {
	if !crypto.IsStrongPassword(password) {
		return "", ErrWeakPassword
	}
	if !crypto.FitsBcrypt(password) {
		return "", ErrLongPassword
	}
	hash, err := crypto.HashPasswordAsBcrypt(password, s.bcryptCost)
	if err != nil {
		return "", common.Wrap(err, "hash password")
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
