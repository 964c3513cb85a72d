package dataset

import "go.uber.org/zap"

// JoinPlanar attaches each neighborhood's planar centroid to its sales,
// matching on the lower-cased key. Sales whose neighborhood is unknown,
// excluded, or never located are dropped: every retained record resolves to
// exactly one neighborhood with valid coordinates.
func JoinPlanar(sales []Sale, nbhds map[string]*Neighborhood) []Sale {
	joined := make([]Sale, 0, len(sales))
	var dropped int

	for _, s := range sales {
		n, ok := nbhds[s.Neighborhood]
		if !ok || n.Excluded || !n.Located {
			dropped++
			continue
		}
		s.Easting = n.Easting
		s.Northing = n.Northing
		s.HasCoords = true
		joined = append(joined, s)
	}

	zap.L().Info("spatial join complete",
		zap.Int("joined", len(joined)),
		zap.Int("dropped", dropped),
	)
	return joined
}
