package search

// NormalizeDistance maps a raw cosine distance (lower = closer, range
// [0,2]) onto a similarity score in [0,1] (higher = closer). The mapping is
// linear, so result ordering is identical to ordering by raw distance. The
// clamps only absorb float noise at the boundaries; the vector index must be
// configured for cosine distance for the range assumption to hold.
func NormalizeDistance(distance float64) float64 {
	score := 1 - distance/2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
