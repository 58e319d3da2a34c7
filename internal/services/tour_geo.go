package services

import (
	"math"
	"strconv"
	"strings"

	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"
)

const (
	UnitMiles      = "mi"
	UnitKilometers = "km"

	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1
)

var errBadLatLng = apperrors.NewBadRequestError("Please provide latitude and longitude in the format lat,lng.")

// ParseGeoQuery разбирает "lat,lng" и единицу измерения
func ParseGeoQuery(latlng, unit string) (dto.GeoQuery, error) {
	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		return dto.GeoQuery{}, errBadLatLng
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return dto.GeoQuery{}, errBadLatLng
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return dto.GeoQuery{}, errBadLatLng
	}
	if unit != UnitMiles && unit != UnitKilometers {
		return dto.GeoQuery{}, apperrors.NewBadRequestError("Unit must be either mi or km.")
	}
	return dto.GeoQuery{Lat: lat, Lng: lng, Unit: unit}, nil
}

func earthRadius(unit string) float64 {
	if unit == UnitMiles {
		return earthRadiusMi
	}
	return earthRadiusKm
}

// haversine - расстояние по дуге большого круга в единицах unit
func haversine(lat1, lng1, lat2, lng2 float64, unit string) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius(unit) * c
}
