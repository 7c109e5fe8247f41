package domain

import "math"

// FullTurnDegrees is one complete rotation of the wheel.
const FullTurnDegrees = 360.0

// Wheel geometry: segment i covers [i*AnglePerSegment(n), (i+1)*AnglePerSegment(n))
// measured from the wheel's zero reference. Rotating the wheel clockwise by an
// angle brings the wheel-relative position angle mod 360 under the fixed pointer.

// AnglePerSegment returns the angular width of one segment on a wheel of n segments.
func AnglePerSegment(n int) float64 {
	if n <= 0 {
		return 0
	}
	return FullTurnDegrees / float64(n)
}

// TargetAngle returns the absolute rotation that leaves the pointer on the
// midpoint of segment index after fullRotations complete turns.
func TargetAngle(n, index, fullRotations int) float64 {
	span := AnglePerSegment(n)
	return float64(fullRotations)*FullTurnDegrees + float64(index)*span + span/2
}

// ResolveIndex returns the segment under the pointer once the wheel has been
// rotated by angle. It is the inverse of TargetAngle for any rotation count.
func ResolveIndex(angle float64, n int) int {
	if n <= 0 {
		return -1
	}

	pos := math.Mod(angle, FullTurnDegrees)
	if pos < 0 {
		pos += FullTurnDegrees
	}

	index := int(math.Floor(pos / AnglePerSegment(n)))
	if index >= n {
		index = n - 1
	}
	return index
}
