package purchase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "marketplace/internal/domain/purchase/valueobjects"
	sharedvo "marketplace/internal/domain/shared/valueobjects"
)

func newTestPurchase(t *testing.T) *PlanPurchase {
	t.Helper()
	p, err := NewPlanPurchase(1, 3, "Plan Equipo", vo.CategoryTeam(), sharedvo.NewMoneyFromFloat(499.00, "MXN"), 5)
	require.NoError(t, err)
	return p
}

func TestNewPlanPurchase(t *testing.T) {
	tests := []struct {
		name     string
		userID   uint
		planID   uint
		licenses int
		wantErr  error
	}{
		{name: "valid", userID: 1, planID: 3, licenses: 5},
		{name: "zero user", userID: 0, planID: 3, licenses: 1, wantErr: ErrInvalidUserID},
		{name: "zero plan", userID: 1, planID: 0, licenses: 1, wantErr: ErrInvalidPlanID},
		{name: "licenses floor to one", userID: 1, planID: 3, licenses: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlanPurchase(tt.userID, tt.planID, "Plan", vo.CategoryLicense(), sharedvo.NewMoney(0, "MXN"), tt.licenses)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Status().IsPending())
			assert.GreaterOrEqual(t, p.Licenses(), 1)
			assert.Nil(t, p.ExpirationDate())
		})
	}
}

func TestPlanPurchaseActivate(t *testing.T) {
	p := newTestPurchase(t)

	require.NoError(t, p.Activate(0))

	assert.True(t, p.Status().IsActive())
	require.NotNil(t, p.ActivationDate())
	require.NotNil(t, p.ExpirationDate())

	wantExpiry := p.ActivationDate().AddDate(0, 0, DefaultDurationDays)
	assert.WithinDuration(t, wantExpiry, *p.ExpirationDate(), time.Second)

	// Re-activation of an already active purchase is rejected.
	assert.ErrorIs(t, p.Activate(0), ErrNotActivatable)
}

func TestPlanPurchaseExpireIfDue(t *testing.T) {
	p := newTestPurchase(t)
	require.NoError(t, p.Activate(0))

	now := time.Now().UTC()
	assert.False(t, p.ExpireIfDue(now), "fresh purchase must not expire")
	assert.True(t, p.IsActive(now))

	future := now.AddDate(1, 0, 1)
	assert.True(t, p.ExpireIfDue(future), "overdue purchase must flip")
	assert.True(t, p.Status().IsExpired())
	assert.False(t, p.IsActive(future))

	// A second pass is a no-op.
	assert.False(t, p.ExpireIfDue(future))
}

func TestDeriveCategory(t *testing.T) {
	tests := []struct {
		name     string
		planName string
		isFree   bool
		want     vo.PlanCategory
	}{
		{name: "free wins over name", planName: "Plan Equipo Gratuito", isFree: true, want: vo.CategoryFree()},
		{name: "equipo is team", planName: "Plan Equipo Anual", want: vo.CategoryTeam()},
		{name: "team in english", planName: "Team Plan", want: vo.CategoryTeam()},
		{name: "anything else is license", planName: "Licencia Adicional", want: vo.CategoryLicense()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vo.DeriveCategory(tt.planName, tt.isFree))
		})
	}
}
