package kernel

import (
	"errors"
	"fmt"
	"strconv"

	"orderbot/internal/pkg/errs"
	"orderbot/internal/pkg/guard"
)

const (
	// LatitudeMin is the smallest valid latitude.
	LatitudeMin = -90.0
	// LatitudeMax is the largest valid latitude.
	LatitudeMax = 90.0
	// LongitudeMin is the smallest valid longitude.
	LongitudeMin = -180.0
	// LongitudeMax is the largest valid longitude.
	LongitudeMax = 180.0

	mapsPlaceURL = "https://www.google.com/maps/place/%s,%s"
)

// ErrGeoPointIsNotConstructed is returned when a GeoPoint was not built by NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a validated latitude/longitude pair, as received from a
// customer's shared location. It renders into the map link stored on
// sessions and orders.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(9.9672, 76.3188)
//	if err != nil {
//	    // out of range
//	}
//	p.MapsLink() // https://www.google.com/maps/place/9.9672,76.3188
type GeoPoint struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates and returns the point.
// Latitude must lie in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(latitude, longitude float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLatitude(latitude), p.setLongitude(longitude)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate returns ErrGeoPointIsNotConstructed for a zero-value GeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// MapsLink returns a Google Maps place link for the point.
func (p GeoPoint) MapsLink() string {
	return fmt.Sprintf(mapsPlaceURL, formatCoordinate(p.latitude), formatCoordinate(p.longitude))
}

// String returns "lat, lng" with the shortest exact representation of each coordinate.
func (p GeoPoint) String() string {
	return formatCoordinate(p.latitude) + ", " + formatCoordinate(p.longitude)
}

func (p *GeoPoint) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}
	p.latitude = latitude
	return nil
}

func (p *GeoPoint) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}
	p.longitude = longitude
	return nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
