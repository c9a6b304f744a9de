// Package emission maps activities to carbon-footprint quantities using
// fixed per-category coefficients. All functions are pure.
package emission

import (
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
)

// Emission factors in kg CO2 per kilometer.
var factorsKgPerKm = map[movementdomain.MovementType]float64{
	movementdomain.TypeWalking:         0,
	movementdomain.TypeCycling:         0,
	movementdomain.TypeDriving:         0.192,
	movementdomain.TypePublicTransport: 0.089,
	movementdomain.TypeFlying:          0.285,
	movementdomain.TypeUnknown:         0.1,
}

// FactorKgPerKm returns the emission coefficient for a transport mode.
// Unrecognized modes fall back to the unknown factor.
func FactorKgPerKm(mode movementdomain.MovementType) float64 {
	factor, ok := factorsKgPerKm[mode]
	if !ok {
		return factorsKgPerKm[movementdomain.TypeUnknown]
	}
	return factor
}

// ForMovement returns the footprint of a trip: linear in distance.
func ForMovement(mode movementdomain.MovementType, distanceKm float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return distanceKm * FactorKgPerKm(mode)
}
