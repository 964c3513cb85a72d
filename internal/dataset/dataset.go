// Package dataset loads the housing sale records and the neighborhood lookup
// table, applies manual overrides, and joins planar coordinates onto sales.
package dataset

// Neighborhood is one row of the abbreviation lookup table, enriched in place
// as geocoding results arrive and immutable thereafter.
type Neighborhood struct {
	Key          string // lower-cased abbreviation, e.g. "collgcr"
	Name         string // display name, e.g. "College Creek"
	SearchString string // free-text input for the geocoder
	Excluded     bool   // dropped from spatial modeling by manual override

	// Set once a geocode result with valid geometry arrives.
	Located  bool
	Lat      float64
	Lng      float64
	Quality  string
	Easting  float64
	Northing float64
}

// Sale is one property sale. Feature values are NaN when the source cell is
// missing; the trainer imputes them. Easting/Northing are zero until the
// spatial join attaches them.
type Sale struct {
	ID           int
	Neighborhood string // lower-cased key into the neighborhood table
	SalePrice    float64
	Features     map[string]float64
	Easting      float64
	Northing     float64
	HasCoords    bool
}
