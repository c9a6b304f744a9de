package emission

import (
	"testing"

	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/stretchr/testify/assert"
)

func TestForMovementMatchesFactorTable(t *testing.T) {
	cases := []struct {
		mode     movementdomain.MovementType
		distance float64
		want     float64
	}{
		{movementdomain.TypeWalking, 10, 0},
		{movementdomain.TypeCycling, 25, 0},
		{movementdomain.TypeDriving, 10, 1.92},
		{movementdomain.TypePublicTransport, 10, 0.89},
		{movementdomain.TypeFlying, 100, 28.5},
		{movementdomain.TypeUnknown, 10, 1.0},
	}

	for _, tc := range cases {
		got := ForMovement(tc.mode, tc.distance)
		assert.InDelta(t, tc.want, got, 1e-9, "mode %s", tc.mode)
	}
}

func TestForMovementLinearInDistance(t *testing.T) {
	base := ForMovement(movementdomain.TypeDriving, 1)
	assert.InDelta(t, 7*base, ForMovement(movementdomain.TypeDriving, 7), 1e-9)
	assert.InDelta(t, 0.5*base, ForMovement(movementdomain.TypeDriving, 0.5), 1e-9)
}

func TestForMovementNonPositiveDistance(t *testing.T) {
	assert.Equal(t, 0.0, ForMovement(movementdomain.TypeDriving, 0))
	assert.Equal(t, 0.0, ForMovement(movementdomain.TypeDriving, -3))
}

func TestFactorUnrecognizedModeFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, 0.1, FactorKgPerKm(movementdomain.MovementType("teleport")))
}
