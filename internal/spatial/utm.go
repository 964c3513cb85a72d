// Package spatial converts geographic coordinates to a planar projection and
// derives neighborhood centroids from boundary shapefiles.
package spatial

import "math"

// WGS-84 → UTM transverse Mercator (Snyder, "Map Projections: A Working
// Manual", eqs. 8-9..8-15). The study area (Ames, IA) falls in zone 15N.

const (
	wgs84SemiMajor = 6378137.0           // metres
	wgs84Flat      = 1 / 298.257223563   // flattening
	utmScale       = 0.9996              // central meridian scale factor k0
	falseEasting   = 500000.0            // metres
	falseNorthingS = 10000000.0          // southern hemisphere only
)

var (
	e2  = wgs84Flat * (2 - wgs84Flat) // first eccentricity squared
	ep2 = e2 / (1 - e2)               // second eccentricity squared
)

// UTM is a projector for one Universal Transverse Mercator zone.
type UTM struct {
	Zone  int
	North bool
}

// ZoneFor returns the UTM zone containing the given longitude.
func ZoneFor(lng float64) int {
	zone := int(math.Floor((lng+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// centralMeridian returns the zone's central meridian in degrees.
func (u UTM) centralMeridian() float64 {
	return float64(u.Zone)*6 - 183
}

// Project converts a WGS-84 latitude/longitude in decimal degrees to UTM
// easting/northing in metres.
func (u UTM) Project(lat, lng float64) (easting, northing float64) {
	phi := lat * math.Pi / 180
	lambda := lng * math.Pi / 180
	lambda0 := u.centralMeridian() * math.Pi / 180

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	n := wgs84SemiMajor / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := cosPhi * (lambda - lambda0)

	m := meridianArc(phi)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	easting = falseEasting + utmScale*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*ep2)*a5/120)

	northing = utmScale * (m + n*tanPhi*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*ep2)*a6/720))

	if !u.North {
		northing += falseNorthingS
	}
	return easting, northing
}

// meridianArc returns the meridian distance from the equator to latitude phi
// (radians) on the WGS-84 ellipsoid.
func meridianArc(phi float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return wgs84SemiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}
