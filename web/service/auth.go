package service

import (
	"context"
	"errors"
	"time"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"
	"github.com/cinerate/cinerate/util/crypto"
	"github.com/cinerate/cinerate/util/token"

	"github.com/op/go-logging"
)

var (
	ErrInvalidCredentials = common.NewUnauthenticated("Invalid credentials")
	ErrAdminSignup        = common.NewForbidden("Cannot register with the admin role")
)

// Login is the outcome of a successful credential check.
type Login struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService struct {
	users  *UserService
	ledger *SessionLedger
	tokens *token.Codec
	log    *logger.Logger

	ttl              time.Duration
	allowAdminSignup bool
}

func NewAuthService(users *UserService, ledger *SessionLedger, tokens *token.Codec, log *logger.Logger, ttl time.Duration, allowAdminSignup bool) *AuthService {
	return &AuthService{
		users:            users,
		ledger:           ledger,
		tokens:           tokens,
		log:              log,
		ttl:              ttl,
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates a user account. Self-registration as admin is refused
// unless explicitly enabled.
func (s *AuthService) Register(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Role == model.RoleAdmin && !s.allowAdminSignup {
		s.log.Event(logging.WARNING, "register_refused", "reason", "admin_signup", "email", in.Email)
		return nil, ErrAdminSignup
	}
	return s.users.CreateUser(ctx, in)
}

// Login verifies the credentials, issues a token and records it in the
// session ledger. No login record is written when verification fails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Login, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.log.Event(logging.WARNING, "login_failed", "reason", "unknown_email", "email", email)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		s.log.Event(logging.WARNING, "login_failed", "reason", "bad_password", "user_id", user.Id)
		return nil, ErrInvalidCredentials
	}

	tok, _, err := s.tokens.Issue(user.Id, string(user.Role), s.ttl)
	if err != nil {
		return nil, common.Wrap(err, "issue token")
	}
	record, err := s.ledger.Open(ctx, user.Id, tok, s.ttl)
	if err != nil {
		return nil, err
	}
	user.Status = model.StatusActive

	s.log.Event(logging.INFO, "login_success", "user_id", user.Id, "username", user.Username)
	return &Login{Token: tok, ExpiresAt: record.ExpirationDate, User: user}, nil
}

// Logout closes every session of the user owning tok.
func (s *AuthService) Logout(ctx context.Context, tok string) error {
	record, err := s.ledger.Close(ctx, tok)
	if err != nil {
		s.log.Event(logging.WARNING, "logout_failed", "reason", common.Message(err))
		return err
	}
	s.log.Event(logging.INFO, "logout_success", "user_id", record.UserId)
	return nil
}

// ExpiresIn is the token lifetime in seconds.
func (s *AuthService) ExpiresIn() int {
	return int(s.ttl / time.Second)
}
