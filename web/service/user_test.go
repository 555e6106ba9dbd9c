package service

import (
	"strings"
	"testing"
	"time"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidation(t *testing.T) {
	env := setup(t)
	env.createUser(t, "ann", model.RoleUser)

	tests := []struct {
		name string
		in   UserInput
		want error
	}{
		{"weak password", UserInput{Username: "bob", Email: "bob@example.com", Password: "abc"}, ErrWeakPassword},
		{"password over bcrypt limit", UserInput{Username: "bob", Email: "bob@example.com", Password: "Aa1!" + strings.Repeat("x", 80)}, ErrLongPassword},
		{"duplicate email", UserInput{Username: "bob", Email: "ANN@example.com", Password: strongPassword}, ErrEmailTaken},
		{"duplicate username", UserInput{Username: "ann", Email: "other@example.com", Password: strongPassword}, ErrUsernameTaken},
		{"invalid role", UserInput{Username: "bob", Email: "bob@example.com", Role: "moderator", Password: strongPassword}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.CreateUser(env.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.EqualValues(t, 1, env.countRows(t, &model.User{}, ""))
}

func TestCreateUserHashesPassword(t *testing.T) {
	env := setup(t)
	user := env.createUser(t, "ann", model.RoleUser)

	stored, err := env.users.GetUser(env.ctx, user.Id)
	require.NoError(t, err)
	assert.True(t, crypto.CheckPasswordHash(stored.Password, strongPassword))
}

func TestUpdateUser(t *testing.T) {
	env := setup(t)
	ann := env.createUser(t, "ann", model.RoleUser)
	env.createUser(t, "bob", model.RoleUser)

	tests := []struct {
		name string
		id   int
		in   UserInput
		want error
	}{
		{"missing user", 999, UserInput{Role: model.RoleAdmin}, ErrUserNotFound},
		{"role change", ann.Id, UserInput{Role: model.RoleAdmin, Email: "bob@example.com"}, ErrRoleChange},
		{"email taken", ann.Id, UserInput{Email: "bob@example.com", Password: "weak"}, ErrEmailTaken},
		{"username taken", ann.Id, UserInput{Username: "bob"}, ErrUsernameTaken},
		{"weak password", ann.Id, UserInput{Password: "weak"}, ErrWeakPassword},
		{"long password", ann.Id, UserInput{Password: "Aa1!" + strings.Repeat("x", 80)}, ErrLongPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.UpdateUser(env.ctx, tt.id, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	updated, err := env.users.UpdateUser(env.ctx, ann.Id, UserInput{
		Username: "annie",
		Email:    "annie@example.com",
		Role:     model.RoleUser,
		Password: "N3w!Password",
	})
	require.NoError(t, err)
	assert.Equal(t, "annie", updated.Username)
	assert.Equal(t, "annie@example.com", updated.Email)
	assert.Equal(t, model.RoleUser, updated.Role)
	assert.True(t, crypto.CheckPasswordHash(updated.Password, "N3w!Password"))

	same, err := env.users.UpdateUser(env.ctx, ann.Id, UserInput{Email: "annie@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "annie", same.Username)
}

func TestChangeRole(t *testing.T) {
	env := setup(t)
	ann := env.createUser(t, "ann", model.RoleUser)

	_, err := env.users.ChangeRole(env.ctx, ann.Id, "root")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.users.ChangeRole(env.ctx, 999, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)

	user, err := env.users.ChangeRole(env.ctx, ann.Id, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	stored, err := env.users.GetUser(env.ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
}

func TestDeleteUser(t *testing.T) {
	env := setup(t)
	ann := env.createUser(t, "ann", model.RoleUser)
	_, err := env.ledger.Open(env.ctx, ann.Id, "tok", time.Hour)
	require.NoError(t, err)

	deleted, err := env.users.DeleteUser(env.ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "ann", deleted.Username)

	assert.Zero(t, env.countRows(t, &model.User{}, ""))
	assert.Zero(t, env.countRows(t, &model.LoginRecord{}, ""))

	_, err = env.users.DeleteUser(env.ctx, ann.Id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserRecomputesAggregates(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "root", model.RoleAdmin)
	ann := env.createUser(t, "ann", model.RoleUser)
	bob := env.createUser(t, "bob", model.RoleUser)
	heat := env.createMovie(t, admin, "Heat")
	alien := env.createMovie(t, admin, "Alien")

	annReview, err := env.reviews.AddReview(env.ctx, ann.Id, heat.Id, 8, nil)
	require.NoError(t, err)
	_, err = env.reviews.LikeReview(env.ctx, annReview.Id, admin.Id)
	require.NoError(t, err)

	_, err = env.reviews.AddReview(env.ctx, ann.Id, alien.Id, 10, nil)
	require.NoError(t, err)
	bobReview, err := env.reviews.AddReview(env.ctx, bob.Id, alien.Id, 6, nil)
	require.NoError(t, err)
	_, err = env.reviews.LikeReview(env.ctx, bobReview.Id, ann.Id)
	require.NoError(t, err)
	_, err = env.reviews.LikeReview(env.ctx, bobReview.Id, admin.Id)
	require.NoError(t, err)

	_, err = env.users.DeleteUser(env.ctx, ann.Id)
	require.NoError(t, err)

	var got model.Movie
	require.NoError(t, env.db.First(&got, heat.Id).Error)
	assert.Zero(t, got.Rating)
	require.NoError(t, env.db.First(&got, alien.Id).Error)
	assert.InDelta(t, 6.0, got.Rating, 1e-9)

	var review model.Review
	require.NoError(t, env.db.First(&review, bobReview.Id).Error)
	assert.Equal(t, 1, review.LikeCount)

	assert.Zero(t, env.countRows(t, &model.Review{}, "user_id = ?", ann.Id))
	assert.Zero(t, env.countRows(t, &model.ReviewLike{}, "user_id = ? OR review_id = ?", ann.Id, annReview.Id))
}

func TestConflictOf(t *testing.T) {
	env := setup(t)
	ann := env.createUser(t, "ann", model.RoleUser)

	tests := []struct {
		name string
		in   UserInput
		want error
	}{
		{"email", UserInput{Email: "ann@example.com"}, ErrEmailTaken},
		{"username", UserInput{Username: "ann"}, ErrUsernameTaken},
		{"neither", UserInput{Username: "zed", Email: "zed@example.com"}, ErrAccountTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, conflictOf(env.db, 0, tt.in), tt.want)
		})
	}
	assert.ErrorIs(t, conflictOf(env.db, ann.Id, UserInput{Email: "ann@example.com"}), ErrAccountTaken)
}

func TestBootstrapAdmin(t *testing.T) {
	env := setup(t)

	created, err := env.users.BootstrapAdmin(env.ctx, "admin", "admin@example.com", strongPassword)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.users.BootstrapAdmin(env.ctx, "admin2", "admin2@example.com", strongPassword)
	require.NoError(t, err)
	assert.False(t, created)

	fresh := setup(t)
	_, err = fresh.users.BootstrapAdmin(fresh.ctx, "admin", "admin@example.com", "weak")
	assert.ErrorIs(t, err, ErrWeakPassword)
}
