package geo

// WGS-84 to Texas North-Central (EPSG:2276) Lambert Conformal Conic, US feet.
// Zoning layers published in that CRS need parcel lat/lng converted before
// the point-in-polygon test.

import "math"

const (
	spFalseEasting  = 1968500.0
	spFalseNorthing = 6561666.666666666
	phi0Deg         = 31.66666666666667 // latitude of origin
	phi1Deg         = 32.13333333333333 // standard parallel 1
	phi2Deg         = 33.96666666666667 // standard parallel 2
	lon0Deg         = -98.5             // central meridian

	ftPerMeter = 3.2808333333333334 // US survey foot
	semiMajorM = 6378137.0          // NAD83 semi-major axis (metres)
	nad83E2    = 0.00669438002290   // NAD83 eccentricity squared
)

// lambertConic holds the precomputed cone constants.
type lambertConic struct {
	n, f, rho0 float64
}

// t is the conformal latitude function of the ellipsoid.
func t(phi float64) float64 {
	e := math.Sqrt(nad83E2)
	es := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-es)/(1+es), e/2)
}

var txNorthCentral = newLambertConic()

func newLambertConic() lambertConic {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	phi0, phi1, phi2 := rad(phi0Deg), rad(phi1Deg), rad(phi2Deg)

	m := func(phi float64) float64 {
		return math.Cos(phi) / math.Sqrt(1-nad83E2*math.Sin(phi)*math.Sin(phi))
	}

	m1, m2 := m(phi1), m(phi2)
	t0, t1, t2 := t(phi0), t(phi1), t(phi2)

	n := math.Log(m1/m2) / math.Log(t1/t2)
	f := semiMajorM * ftPerMeter * m1 / (n * math.Pow(t1, n))
	return lambertConic{n: n, f: f, rho0: f * math.Pow(t0, n)}
}

// TexasNorthCentral converts WGS-84 degrees to state plane feet, returned
// as (northing, easting) to line up with the (y, x) ring order.
func TexasNorthCentral(lat, lng float64) (northingFt, eastingFt float64) {
	c := txNorthCentral
	phi := lat * math.Pi / 180
	lambda := lng * math.Pi / 180
	lambda0 := lon0Deg * math.Pi / 180

	rho := c.f * math.Pow(t(phi), c.n)
	theta := c.n * (lambda - lambda0)

	eastingFt = rho*math.Sin(theta) + spFalseEasting
	northingFt = c.rho0 - rho*math.Cos(theta) + spFalseNorthing
	return northingFt, eastingFt
}
