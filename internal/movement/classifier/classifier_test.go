package classifier

import (
	"testing"
	"time"

	"github.com/ecotrail/ecotrail/internal/movement/domain"
	"github.com/stretchr/testify/assert"
)

func fix(lat, lon float64, at time.Time) domain.Location {
	return domain.Location{Latitude: lat, Longitude: lon, Accuracy: 5, Timestamp: at}
}

func TestFirstFixEmitsNothing(t *testing.T) {
	c := New()
	_, ok := c.Observe(fix(25.0330, 121.5654, time.Now()))
	assert.False(t, ok)
}

func TestShortDistanceEmitsNothing(t *testing.T) {
	c := New()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.Observe(fix(25.0330, 121.5654, start))

	// ~11 m north, well under the 50 m gate.
	_, ok := c.Observe(fix(25.0331, 121.5654, start.Add(2*time.Minute)))
	assert.False(t, ok)
}

func TestElapsedOutsideWindowEmitsNothing(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Too fast after the previous fix.
	c := New()
	c.Observe(fix(25.0330, 121.5654, start))
	_, ok := c.Observe(fix(25.0430, 121.5654, start.Add(20*time.Second)))
	assert.False(t, ok)

	// Stale fix after a long idle gap.
	c = New()
	c.Observe(fix(25.0330, 121.5654, start))
	_, ok = c.Observe(fix(25.0430, 121.5654, start.Add(45*time.Minute)))
	assert.False(t, ok)
}

func TestRejectedFixBecomesNewReference(t *testing.T) {
	c := New()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.Observe(fix(25.0330, 121.5654, start))

	// Rejected for staleness, but becomes the reference point.
	stale := fix(25.0430, 121.5654, start.Add(45*time.Minute))
	_, ok := c.Observe(stale)
	assert.False(t, ok)

	// A valid pair relative to the stale fix now emits.
	seg, ok := c.Observe(fix(25.0530, 121.5654, stale.Timestamp.Add(5*time.Minute)))
	assert.True(t, ok)
	assert.Equal(t, stale, seg.Start)
}

func TestWalkingSegment(t *testing.T) {
	c := New()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.Observe(fix(25.0330, 121.5654, start))

	// ~1.1 km in 15 minutes is about 4.4 km/h.
	seg, ok := c.Observe(fix(25.0430, 121.5654, start.Add(15*time.Minute)))
	assert.True(t, ok)
	assert.Equal(t, domain.TypeWalking, seg.Type)
	assert.InDelta(t, 1.11, seg.DistanceKm, 0.02)
	assert.InDelta(t, 15, seg.DurationMin, 1e-9)
}

func TestDrivingSegment(t *testing.T) {
	c := New()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.Observe(fix(25.0330, 121.5654, start))

	// ~5.6 km in 5 minutes is about 67 km/h.
	seg, ok := c.Observe(fix(25.0830, 121.5654, start.Add(5*time.Minute)))
	assert.True(t, ok)
	assert.Equal(t, domain.TypeDriving, seg.Type)
}

func TestClassifySpeedThresholds(t *testing.T) {
	assert.Equal(t, domain.TypeWalking, ClassifySpeed(0))
	assert.Equal(t, domain.TypeWalking, ClassifySpeed(4.9))
	assert.Equal(t, domain.TypeCycling, ClassifySpeed(5))
	assert.Equal(t, domain.TypeCycling, ClassifySpeed(19.9))
	assert.Equal(t, domain.TypeDriving, ClassifySpeed(20))
	assert.Equal(t, domain.TypeDriving, ClassifySpeed(79.9))
	assert.Equal(t, domain.TypeUnknown, ClassifySpeed(80))
	assert.Equal(t, domain.TypeUnknown, ClassifySpeed(900))
}

func TestRollingBufferIsBounded(t *testing.T) {
	c := New()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		c.Observe(fix(25.0+float64(i)*0.001, 121.5, at.Add(time.Duration(i)*time.Minute)))
	}
	assert.LessOrEqual(t, len(c.buffer), bufferSize)
}
