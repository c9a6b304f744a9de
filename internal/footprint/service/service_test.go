package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecotrail/ecotrail/internal/clock"
	"github.com/ecotrail/ecotrail/internal/config"
	"github.com/ecotrail/ecotrail/internal/footprint/domain"
	"github.com/ecotrail/ecotrail/internal/footprint/repository"
	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&movementdomain.Movement{},
		&invoicedomain.Invoice{},
		&domain.DailyFootprint{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Cfg:   config.Config{DefaultDailyGoalKg: 20},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(testDay.Add(20 * time.Hour)),
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func userCtx(t *testing.T, db *gorm.DB, node *snowflake.Node, goalKg float64) (context.Context, snowflake.ID) {
	t.Helper()

	userID := node.Generate()
	require.NoError(t, db.Create(&userdomain.User{
		ID:          userID,
		Name:        "Alex",
		Email:       userID.String() + "@example.com",
		APIToken:    "token-" + userID.String(),
		DailyGoalKg: goalKg,
		CreatedAt:   testDay,
		UpdatedAt:   testDay,
	}).Error)
	return usercontext.WithUserID(context.Background(), userID), userID
}

func addMovement(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, occurredAt time.Time, footprintKg float64) {
	t.Helper()

	start := occurredAt.Add(-10 * time.Minute)
	require.NoError(t, db.Create(&movementdomain.Movement{
		ID:     node.Generate(),
		UserID: userID,
		Type:   movementdomain.TypeDriving,
		StartLocation: movementdomain.Location{
			Latitude: 25.0330, Longitude: 121.5654, Accuracy: 5, Timestamp: start,
		},
		EndLocation: movementdomain.Location{
			Latitude: 25.1230, Longitude: 121.5654, Accuracy: 5, Timestamp: occurredAt,
		},
		DistanceKm:         10,
		DurationMin:        10,
		CarbonFootprintKg:  footprintKg,
		Passengers:         1,
		VerificationMethod: movementdomain.VerificationGPS,
		OccurredAt:         occurredAt,
		CreatedAt:          occurredAt,
		UpdatedAt:          occurredAt,
	}).Error)
}

func addInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, occurredAt time.Time, footprintKg float64) {
	t.Helper()

	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:                 node.Generate(),
		UserID:             userID,
		Type:               invoicedomain.TypePaper,
		StoreName:          "Greengrocer",
		StoreCategory:      "other",
		TotalAmount:        300,
		CarbonFootprintKg:  footprintKg,
		VerificationMethod: invoicedomain.VerificationManual,
		OccurredAt:         occurredAt,
		CreatedAt:          occurredAt,
		UpdatedAt:          occurredAt,
	}).Error)
}

func TestCalculateDailyAggregatesDay(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	// A walk, a 10 km drive and a shopping trip on the same day.
	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 0)
	addMovement(t, db, node, userID, testDay.Add(9*time.Hour), 1.92)
	addInvoice(t, db, node, userID, testDay.Add(12*time.Hour), 1.6)

	footprint, err := svc.CalculateDaily(ctx, testDay.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, testDay, footprint.Date.UTC())
	assert.InDelta(t, 1.92, footprint.Breakdown.Transportation, 1e-9)
	assert.InDelta(t, 1.6, footprint.Breakdown.Shopping, 1e-9)
	assert.InDelta(t, 3.52, footprint.Total, 1e-9)
	assert.Equal(t, 20.0, footprint.DailyGoal)
	assert.True(t, footprint.IsGoalAchieved)
	assert.InDelta(t, 17.6, footprint.GoalProgress, 1e-9)
	assert.True(t, footprint.IsCalculated)
	require.NotNil(t, footprint.LastCalculated)

	var insights []domain.Insight
	require.NoError(t, json.Unmarshal(footprint.Insights, &insights))
	require.NotEmpty(t, insights)
	assert.Equal(t, domain.InsightAchievement, insights[0].Type)
	assert.Equal(t, domain.PriorityMedium, insights[0].Priority)
}

func TestInsightsOverGoalWarns(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 2)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 5)

	footprint, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)

	var insights []domain.Insight
	require.NoError(t, json.Unmarshal(footprint.Insights, &insights))
	require.Len(t, insights, 2)
	assert.Equal(t, domain.InsightWarning, insights[0].Type)
	assert.Equal(t, domain.PriorityHigh, insights[0].Priority)
	assert.Equal(t, domain.InsightTip, insights[1].Type)
	assert.Equal(t, "transportation", insights[1].Category)
}

func TestCalculateDailyIsIdempotent(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 1.92)

	first, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)

	addInvoice(t, db, node, userID, testDay.Add(12*time.Hour), 1.6)

	second, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, 3.52, second.Total, 1e-9)

	var count int64
	require.NoError(t, db.Model(&domain.DailyFootprint{}).
		Where("user_id = ?", userID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCalculateDailyExcludesNeighboringDays(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	addMovement(t, db, node, userID, testDay.Add(-1*time.Hour), 5)
	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 1.92)
	addMovement(t, db, node, userID, testDay.Add(24*time.Hour), 5)

	footprint, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)
	assert.InDelta(t, 1.92, footprint.Total, 1e-9)
}

func TestCalculateDailyComparesToPreviousDay(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	yesterday := testDay.AddDate(0, 0, -1)
	addMovement(t, db, node, userID, yesterday.Add(8*time.Hour), 4)
	_, err := svc.CalculateDaily(ctx, yesterday)
	require.NoError(t, err)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 2)
	footprint, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)

	assert.InDelta(t, -50, footprint.Comparison.PreviousDay, 1e-9)
}

func TestGoalProgressUnclampedInStorage(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 2)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 5)

	footprint, err := svc.CalculateDaily(ctx, testDay)
	require.NoError(t, err)

	assert.False(t, footprint.IsGoalAchieved)
	assert.InDelta(t, 250, footprint.GoalProgress, 1e-9)
	assert.Equal(t, 100.0, footprint.GoalProgressPct())
}

func TestSetDailyGoalRefreshesToday(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 5)

	footprint, err := svc.SetDailyGoal(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 4.0, footprint.DailyGoal)
	assert.False(t, footprint.IsGoalAchieved)

	var user userdomain.User
	require.NoError(t, db.Where("id = ?", userID).First(&user).Error)
	assert.Equal(t, 4.0, user.DailyGoalKg)

	_, err = svc.SetDailyGoal(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidGoal)
}

func TestSetDailyGoalAcceptsZero(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	addMovement(t, db, node, userID, testDay.Add(8*time.Hour), 5)

	footprint, err := svc.SetDailyGoal(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, footprint.DailyGoal)
	assert.False(t, footprint.IsGoalAchieved)
	assert.Equal(t, 0.0, footprint.GoalProgress)

	var user userdomain.User
	require.NoError(t, db.Where("id = ?", userID).First(&user).Error)
	assert.Equal(t, 0.0, user.DailyGoalKg)
}

func TestGetByDateMissing(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, _ := userCtx(t, db, node, 20)

	_, err := svc.GetByDate(ctx, testDay)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReturnsAscendingRange(t *testing.T) {
	svc, db, node := setupService(t)
	ctx, userID := userCtx(t, db, node, 20)

	for offset := 2; offset >= 0; offset-- {
		day := testDay.AddDate(0, 0, -offset)
		addMovement(t, db, node, userID, day.Add(8*time.Hour), float64(offset+1))
		_, err := svc.CalculateDaily(ctx, day)
		require.NoError(t, err)
	}

	footprints, err := svc.List(ctx, domain.ListFootprintRequest{
		From: testDay.AddDate(0, 0, -2),
		To:   testDay,
	})
	require.NoError(t, err)
	require.Len(t, footprints, 3)
	assert.True(t, footprints[0].Date.Before(footprints[1].Date))
	assert.True(t, footprints[1].Date.Before(footprints[2].Date))

	_, err = svc.List(ctx, domain.ListFootprintRequest{From: testDay, To: testDay.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
