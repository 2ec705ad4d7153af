package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketplace/internal/domain/purchase"
	purchasevo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
	"marketplace/internal/infrastructure/persistence/migrations"
	"marketplace/internal/infrastructure/persistence/models"
	apperrors "marketplace/internal/shared/errors"
	"marketplace/internal/shared/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(gormDB, logger.NewLogger()))
	return gormDB
}

func newActivePurchase(t *testing.T, userID uint, category purchasevo.PlanCategory) *purchase.PlanPurchase {
	t.Helper()
	p, err := purchase.NewPlanPurchase(userID, 3, "Plan Individual", category,
		sharedvo.NewMoneyFromFloat(990, "MXN"), 1)
	require.NoError(t, err)
	require.NoError(t, p.Activate(purchase.DefaultDurationDays))
	return p
}

func TestPurchaseRepositoryRoundTrip(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewPurchaseRepository(gormDB, logger.NewLogger())
	ctx := context.Background()

	p := newActivePurchase(t, 1, purchasevo.CategoryLicense())
	p.SetMetadata("plan_description", "una licencia")
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID())

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.UserID(), loaded.UserID())
	assert.Equal(t, p.PlanName(), loaded.PlanName())
	assert.True(t, loaded.Status().IsActive())
	assert.Equal(t, int64(99000), loaded.Amount().AmountInCents())
	assert.Equal(t, "una licencia", loaded.Metadata()["plan_description"])
}

func TestPurchaseRepositoryFreeSlotUnique(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewPurchaseRepository(gormDB, logger.NewLogger())
	ctx := context.Background()

	first := newActivePurchase(t, 1, purchasevo.CategoryFree())
	require.NoError(t, repo.Create(ctx, first))

	// Second live free purchase for the same user hits the index.
	second := newActivePurchase(t, 1, purchasevo.CategoryFree())
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	// A different user is unaffected.
	other := newActivePurchase(t, 2, purchasevo.CategoryFree())
	assert.NoError(t, repo.Create(ctx, other))

	// Paid purchases never occupy the slot.
	paid := newActivePurchase(t, 1, purchasevo.CategoryTeam())
	assert.NoError(t, repo.Create(ctx, paid))

	has, err := repo.UserHasFreePurchase(ctx, 1)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.UserHasFreePurchase(ctx, 3)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPurchaseRepositoryLazyExpiration(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewPurchaseRepository(gormDB, logger.NewLogger())
	ctx := context.Background()

	p := newActivePurchase(t, 1, purchasevo.CategoryLicense())
	require.NoError(t, repo.Create(ctx, p))

	// Backdate the expiration below the repository's feet.
	past := time.Now().UTC().AddDate(0, 0, -1)
	require.NoError(t, gormDB.Model(&models.PlanPurchaseModel{}).
		Where("id = ?", p.ID()).
		Update("expiration_date", past).Error)

	// The read observes the expiration and persists the flip.
	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Status().IsExpired())

	var model models.PlanPurchaseModel
	require.NoError(t, gormDB.First(&model, p.ID()).Error)
	assert.Equal(t, "expired", model.Status)

	active, err := repo.FindActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, active)
}
