package location

import (
	"math"
	"unicode/utf16"
)

const (
	// DefaultMaxOffsetDegrees is roughly 300 m at mid-latitudes.
	DefaultMaxOffsetDegrees = 0.003

	// hashSeed is the djb2 starting value.
	hashSeed int32 = 5381

	// Per-axis mixing constants. They must differ, otherwise both axes are
	// the same function of the hash and every offset lands on the diagonal.
	latMultiplier uint32 = 0x9E3779B1
	lngMultiplier uint32 = 0x85EBCA77

	// offsetBuckets is the resolution of the unit interval mapping.
	offsetBuckets = 10000
)

// Offset is a displacement in degrees applied to a true coordinate.
// Both components lie in [-R, R] where R is the configured maximum offset.
type Offset struct {
	Lat float64 `json:"lat_offset"`
	Lng float64 `json:"lng_offset"`
}

// Hash returns the absolute value of the djb2 hash of key.
//
// The key is processed as UTF-16 code units and the accumulator wraps as a
// 32-bit signed integer after every step, which reproduces the values
// computed by the JavaScript clients byte for byte. The absolute value of
// math.MinInt32 is 2^31, hence the int64 result.
func Hash(key string) int64 {
	h := hashSeed
	for _, unit := range utf16.Encode([]rune(key)) {
		h = h*33 + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return abs
}

// ComputeOffset derives the offset for key scaled to maxOffsetDegrees.
//
// It returns an error matching ErrInvalidArgument when key is empty or
// maxOffsetDegrees is not a positive finite number.
func ComputeOffset(key string, maxOffsetDegrees float64) (Offset, error) {
	if key == "" {
		return Offset{}, invalidArgument("key", "must not be empty")
	}
	if err := validateRadius(maxOffsetDegrees); err != nil {
		return Offset{}, err
	}
	return computeOffset(key, maxOffsetDegrees), nil
}

func computeOffset(key string, maxOffsetDegrees float64) Offset {
	h := uint32(Hash(key))
	return Offset{
		Lat: axisOffset(h, latMultiplier, maxOffsetDegrees),
		Lng: axisOffset(h, lngMultiplier, maxOffsetDegrees),
	}
}

// axisOffset mixes the hash with an odd multiplier (xor, then multiply
// modulo 2^32) and maps the result onto [-1, 1) before scaling.
func axisOffset(h, multiplier uint32, maxOffsetDegrees float64) float64 {
	mixed := (h ^ multiplier) * multiplier
	bucket := float64(mixed % offsetBuckets)
	// Explicit conversions keep the compiler from fusing into FMA
	// instructions, which would differ between architectures.
	unit := float64(float64(bucket/offsetBuckets)*2) - 1
	return float64(unit * maxOffsetDegrees)
}

func validateRadius(maxOffsetDegrees float64) error {
	if math.IsNaN(maxOffsetDegrees) || math.IsInf(maxOffsetDegrees, 0) {
		return invalidArgument("max_offset_degrees", "must be finite, got %v", maxOffsetDegrees)
	}
	if maxOffsetDegrees <= 0 {
		return invalidArgument("max_offset_degrees", "must be positive, got %v", maxOffsetDegrees)
	}
	return nil
}
