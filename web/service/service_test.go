package service

import (
	"context"
	"testing"
	"time"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/database/testdb"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/token"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const strongPassword = "Str0ng!Pass"

type testEnv struct {
	db      *gorm.DB
	users   *UserService
	ledger  *SessionLedger
	tokens  *token.Codec
	auth    *AuthService
	movies  *MovieService
	reviews *ReviewService
	ctx     context.Context
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.New(t)
	log := logger.Discard()
	env := &testEnv{
		db:      db,
		users:   NewUserService(db, log, bcrypt.MinCost),
		ledger:  NewSessionLedger(db, log),
		tokens:  token.NewCodec([]byte("test-secret")),
		movies:  NewMovieService(db, log),
		reviews: NewReviewService(db, log),
		ctx:     context.Background(),
	}
	env.auth = NewAuthService(env.users, env.ledger, env.tokens, log, 30*time.Minute, false)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	user, err := e.users.CreateUser(e.ctx, UserInput{
		Username: name,
		Email:    name + "@example.com",
		Role:     role,
		Password: strongPassword,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createMovie(t *testing.T, creator *model.User, title string) *model.Movie {
	t.Helper()
	movie, err := e.movies.CreateMovie(e.ctx, creator.Id, MovieInput{Title: title})
	require.NoError(t, err)
	return movie
}

func (e *testEnv) countRows(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
