package location

import (
	"math"
)

// Point is a WGS 84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point is a finite coordinate on the globe.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return invalidArgument("lat", "must be within [-90, 90], got %v", p.Lat)
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) || p.Lng < -180 || p.Lng > 180 {
		return invalidArgument("lng", "must be within [-180, 180], got %v", p.Lng)
	}
	return nil
}

// Apply displaces p by the offset. Latitude is clamped to the poles and
// longitude wraps around the antimeridian into [-180, 180).
func (o Offset) Apply(p Point) Point {
	lat := p.Lat + o.Lat
	if lat > 90 {
		lat = 90
	} else if lat < -90 {
		lat = -90
	}
	return Point{Lat: lat, Lng: wrapLongitude(p.Lng + o.Lng)}
}

func wrapLongitude(lng float64) float64 {
	if lng >= -180 && lng < 180 {
		return lng
	}
	wrapped := math.Mod(lng+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}

// Key builds the location key for an address owned by ownerID.
//
// Scoping the key to the owner keeps two owners at similar addresses from
// sharing correlated offsets. The plain concatenation matches keys that
// were persisted before this package existed; do not add a separator.
// Both parts are required: an unsalted address would give every owner at
// that address the same offset.
func Key(address, ownerID string) (string, error) {
	if address == "" {
		return "", invalidArgument("address", "is required")
	}
	if ownerID == "" {
		return "", invalidArgument("owner_id", "is required")
	}
	return address + ownerID, nil
}

// Obfuscator computes offsets with a fixed, pre-validated radius.
// The zero value is not usable; create one with NewObfuscator.
type Obfuscator struct {
	maxOffsetDegrees float64
}

// NewObfuscator returns an Obfuscator for the given maximum offset in
// degrees. Use DefaultMaxOffsetDegrees unless configured otherwise.
func NewObfuscator(maxOffsetDegrees float64) (Obfuscator, error) {
	if err := validateRadius(maxOffsetDegrees); err != nil {
		return Obfuscator{}, err
	}
	return Obfuscator{maxOffsetDegrees: maxOffsetDegrees}, nil
}

// MaxOffsetDegrees returns the configured radius.
func (o Obfuscator) MaxOffsetDegrees() float64 {
	return o.maxOffsetDegrees
}

// Offset returns the offset for key.
func (o Obfuscator) Offset(key string) (Offset, error) {
	return ComputeOffset(key, o.maxOffsetDegrees)
}

// Public returns the publicly displayable point for the true coordinate
// identified by key. The true point is neither stored nor returned.
func (o Obfuscator) Public(key string, truePoint Point) (Point, error) {
	if err := truePoint.Validate(); err != nil {
		return Point{}, err
	}
	off, err := o.Offset(key)
	if err != nil {
		return Point{}, err
	}
	return off.Apply(truePoint), nil
}
