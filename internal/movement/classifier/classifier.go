// Package classifier converts a stream of raw location fixes into discrete
// movement segments tagged with an inferred transport mode.
package classifier

import (
	"github.com/ecotrail/ecotrail/internal/geo"
	"github.com/ecotrail/ecotrail/internal/movement/domain"
)

const (
	// Segments shorter than this are treated as GPS noise.
	minDistanceKm = 0.05
	// Fix pairs outside this elapsed window are ignored: too close
	// together is jitter, too far apart means a stale fix after idle.
	minElapsedMin = 0.5
	maxElapsedMin = 30

	bufferSize = 10
)

// Speed thresholds in km/h. Coarse on purpose; no smoothing or hysteresis
// across segments.
const (
	walkingMaxKmh = 5
	cyclingMaxKmh = 20
	drivingMaxKmh = 80
)

// Segment is a detected contiguous trip between two fixes.
type Segment struct {
	Type        domain.MovementType
	Start       domain.Location
	End         domain.Location
	DistanceKm  float64
	DurationMin float64
	SpeedKmh    float64
}

// Classifier consumes location fixes incrementally. It retains the single
// last-known fix as the reference point and a bounded rolling window of
// recent fixes; no other history is kept.
type Classifier struct {
	last   *domain.Location
	buffer []domain.Location
}

func New() *Classifier {
	return &Classifier{}
}

// Observe feeds one fix into the classifier. It returns a segment when the
// pair of fixes passes the distance and elapsed-time gates; otherwise the
// fix simply becomes the new reference point.
func (c *Classifier) Observe(fix domain.Location) (Segment, bool) {
	c.buffer = append(c.buffer, fix)
	if len(c.buffer) > bufferSize {
		c.buffer = c.buffer[1:]
	}

	prev := c.last
	c.last = &fix

	if prev == nil {
		return Segment{}, false
	}

	elapsedMin := fix.Timestamp.Sub(prev.Timestamp).Minutes()
	if elapsedMin <= minElapsedMin || elapsedMin >= maxElapsedMin {
		return Segment{}, false
	}

	distanceKm := geo.Haversine(prev.Latitude, prev.Longitude, fix.Latitude, fix.Longitude)
	if distanceKm <= minDistanceKm {
		return Segment{}, false
	}

	speedKmh := distanceKm / (elapsedMin / 60)

	return Segment{
		Type:        ClassifySpeed(speedKmh),
		Start:       *prev,
		End:         fix,
		DistanceKm:  distanceKm,
		DurationMin: elapsedMin,
		SpeedKmh:    speedKmh,
	}, true
}

// Reset drops all retained state.
func (c *Classifier) Reset() {
	c.last = nil
	c.buffer = c.buffer[:0]
}

// ClassifySpeed maps an instantaneous speed to a transport mode.
func ClassifySpeed(speedKmh float64) domain.MovementType {
	switch {
	case speedKmh < walkingMaxKmh:
		return domain.TypeWalking
	case speedKmh < cyclingMaxKmh:
		return domain.TypeCycling
	case speedKmh < drivingMaxKmh:
		return domain.TypeDriving
	default:
		return domain.TypeUnknown
	}
}
