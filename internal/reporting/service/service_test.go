package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/ecotrail/ecotrail/internal/reporting/domain"
	"github.com/ecotrail/ecotrail/internal/reporting/repository"
	"github.com/ecotrail/ecotrail/internal/usercontext"
	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&movementdomain.Movement{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&footprintdomain.DailyFootprint{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db, node
}

func addUser(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) snowflake.ID {
	t.Helper()

	userID := node.Generate()
	require.NoError(t, db.Create(&userdomain.User{
		ID:       userID,
		Name:     name,
		Email:    userID.String() + "@example.com",
		APIToken: "token-" + userID.String(),
	}).Error)
	return userID
}

func addDaily(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, date time.Time, total, transportation, shopping float64) {
	t.Helper()

	require.NoError(t, db.Create(&footprintdomain.DailyFootprint{
		ID:     node.Generate(),
		UserID: userID,
		Date:   date,
		Total:  total,
		Breakdown: footprintdomain.Breakdown{
			Transportation: transportation,
			Shopping:       shopping,
		},
		DailyGoal:    20,
		Insights:     []byte("[]"),
		IsCalculated: true,
		CreatedAt:    date,
		UpdatedAt:    date,
	}).Error)
}

func TestUserStatsAggregatesRange(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	addDaily(t, db, node, userID, day, 4, 3, 1)
	addDaily(t, db, node, userID, day.AddDate(0, 0, 1), 6, 2, 4)

	stats, err := svc.UserStats(ctx, day, day.AddDate(0, 0, 6))
	require.NoError(t, err)

	assert.InDelta(t, 10, stats.TotalKg, 1e-9)
	assert.InDelta(t, 5, stats.AverageDailyKg, 1e-9)
	assert.InDelta(t, 6, stats.MaxDailyKg, 1e-9)
	assert.InDelta(t, 4, stats.MinDailyKg, 1e-9)
	assert.EqualValues(t, 2, stats.DaysTracked)
	assert.InDelta(t, 5, stats.Transportation, 1e-9)
	assert.InDelta(t, 5, stats.Shopping, 1e-9)
}

func TestUserStatsEmptyRangeIsZero(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	stats, err := svc.UserStats(ctx, day, day.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, domain.UserStats{}, stats)
}

func TestTrendsWeeklyBuckets(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	// Two full ISO weeks starting on a Monday.
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 14; offset++ {
		addDaily(t, db, node, userID, start.AddDate(0, 0, offset), 1, 1, 0)
	}

	points, err := svc.Trends(ctx, start, start.AddDate(0, 0, 13), domain.PeriodWeek)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "2026-W10", points[0].Bucket)
	assert.Equal(t, "2026-W11", points[1].Bucket)
	assert.InDelta(t, 7, points[0].TotalKg, 1e-9)
	assert.EqualValues(t, 7, points[0].Days)
	assert.InDelta(t, 7, points[0].Transportation, 1e-9)
	assert.InDelta(t, 0, points[0].Shopping, 1e-9)
}

func TestTrendsMonthlyBuckets(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	addDaily(t, db, node, userID, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 2, 2, 0)
	addDaily(t, db, node, userID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 3, 1, 2)

	points, err := svc.Trends(ctx,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		domain.PeriodMonth,
	)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "2026-02", points[0].Bucket)
	assert.Equal(t, "2026-03", points[1].Bucket)
	assert.InDelta(t, 1, points[1].Transportation, 1e-9)
	assert.InDelta(t, 2, points[1].Shopping, 1e-9)
}

func TestTrendsRejectsBadInput(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.Trends(ctx, day, day.AddDate(0, 0, -1), domain.PeriodDay)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.Trends(ctx, day, day.AddDate(0, 0, 1), domain.Period("fortnight"))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestLeaderboardRanksLowestAverageFirst(t *testing.T) {
	svc, db, node := setupService(t)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	low := addUser(t, db, node, "Low")
	mid := addUser(t, db, node, "Mid")
	high := addUser(t, db, node, "High")
	for offset := 0; offset < 2; offset++ {
		addDaily(t, db, node, low, day.AddDate(0, 0, offset), 5, 5, 0)
		addDaily(t, db, node, mid, day.AddDate(0, 0, offset), 10, 10, 0)
		addDaily(t, db, node, high, day.AddDate(0, 0, offset), 15, 15, 0)
	}

	ctx := usercontext.WithUserID(context.Background(), low)
	entries, err := svc.Leaderboard(ctx, day, day.AddDate(0, 0, 6), 0)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Low", entries[0].Name)
	assert.InDelta(t, 5, entries[0].AverageDailyKg, 1e-9)
	assert.Equal(t, "Mid", entries[1].Name)
	assert.Equal(t, "High", entries[2].Name)
	assert.EqualValues(t, 2, entries[0].DaysTracked)

	limited, err := svc.Leaderboard(ctx, day, day.AddDate(0, 0, 6), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = svc.Leaderboard(ctx, day, day.AddDate(0, 0, 6), 101)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestCategoryDistributionOrdersByAmount(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	invoiceID := node.Generate()
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:         invoiceID,
		UserID:     userID,
		Type:       invoicedomain.TypePaper,
		StoreName:  "Greengrocer",
		OccurredAt: day,
	}).Error)
	require.NoError(t, db.Create([]invoicedomain.InvoiceItem{
		{ID: node.Generate(), InvoiceID: invoiceID, UserID: userID, Name: "Apples", Quantity: 2, Price: 50, Category: invoicedomain.CategoryFood, CarbonFootprintKg: 0.6},
		{ID: node.Generate(), InvoiceID: invoiceID, UserID: userID, Name: "Laptop", Quantity: 1, Price: 900, Category: invoicedomain.CategoryElectronics, CarbonFootprintKg: 150},
	}).Error)

	entries, err := svc.CategoryDistribution(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "electronics", entries[0].Category)
	assert.InDelta(t, 900, entries[0].Amount, 1e-9)
	assert.Equal(t, "food", entries[1].Category)
	assert.InDelta(t, 100, entries[1].Amount, 1e-9)
}

func TestStoreStatsTracksVisits(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	// Bookshop emits far more carbon but Greengrocer takes more money;
	// ranking follows spend, not footprint.
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	invoices := []struct {
		store     string
		amount    float64
		footprint float64
	}{
		{"Greengrocer", 100, 1},
		{"Greengrocer", 150, 2},
		{"Bookshop", 80, 50},
	}
	for offset, invoice := range invoices {
		require.NoError(t, db.Create(&invoicedomain.Invoice{
			ID:                node.Generate(),
			UserID:            userID,
			Type:              invoicedomain.TypePaper,
			StoreName:         invoice.store,
			TotalAmount:       invoice.amount,
			CarbonFootprintKg: invoice.footprint,
			OccurredAt:        day.Add(time.Duration(offset) * time.Hour),
		}).Error)
	}

	entries, err := svc.StoreStats(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Greengrocer", entries[0].StoreName)
	assert.Equal(t, "Bookshop", entries[1].StoreName)
	assert.EqualValues(t, 2, entries[0].VisitCount)
	assert.InDelta(t, 250, entries[0].TotalAmount, 1e-9)
	assert.InDelta(t, 3, entries[0].FootprintKg, 1e-9)
	assert.WithinDuration(t, day.Add(time.Hour), entries[0].LastVisit, time.Second)
}

func TestMovementStatsTotals(t *testing.T) {
	svc, db, node := setupService(t)
	userID := addUser(t, db, node, "Alex")
	ctx := usercontext.WithUserID(context.Background(), userID)

	day := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for offset := 0; offset < 2; offset++ {
		require.NoError(t, db.Create(&movementdomain.Movement{
			ID:                node.Generate(),
			UserID:            userID,
			Type:              movementdomain.TypeDriving,
			StartLocation:     movementdomain.Location{Latitude: 25, Longitude: 121, Timestamp: day},
			EndLocation:       movementdomain.Location{Latitude: 25.1, Longitude: 121, Timestamp: day.Add(10 * time.Minute)},
			DistanceKm:        10,
			DurationMin:       10,
			CarbonFootprintKg: 1.92,
			Passengers:        1,
			OccurredAt:        day.Add(time.Duration(offset) * time.Hour),
		}).Error)
	}

	stats, err := svc.MovementStats(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.MovementCount)
	assert.InDelta(t, 20, stats.TotalDistanceKm, 1e-9)
	assert.InDelta(t, 3.84, stats.TotalFootprintKg, 1e-9)
}

func TestReportingRequiresUser(t *testing.T) {
	svc, _, _ := setupService(t)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.UserStats(context.Background(), day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}
