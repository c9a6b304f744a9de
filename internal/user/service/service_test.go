package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/config"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	"github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/ecotrail/ecotrail/internal/user/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Cfg:   config.Config{DefaultDailyGoalKg: 20},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestRegisterIssuesTokenAndDefaultGoal(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:  "Alex",
		Email: "Alex@Example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.APIToken)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.Equal(t, 20.0, user.DailyGoalKg)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Name: "Alex", Email: "alex@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Name: "Sam", Email: "alex@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Name: " ", Email: "alex@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Name: "Alex", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestAuthenticateResolvesToken(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(context.Background(), domain.RegisterRequest{Name: "Alex", Email: "alex@example.com"})
	require.NoError(t, err)

	found, err := svc.Authenticate(context.Background(), user.APIToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = svc.Authenticate(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc := setupService(t)

	user, err := svc.Register(context.Background(), domain.RegisterRequest{Name: "Alex", Email: "alex@example.com"})
	require.NoError(t, err)

	ctx := usercontext.WithUserID(context.Background(), user.ID)
	name := "Alexandra"
	updated, err := svc.UpdateProfile(ctx, domain.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", updated.Name)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", me.Name)
}
