package util

import (
	"math"
	"net/url"
	"strconv"

	"github.com/JensKlimke/SimMap-sub000/domain"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundNullable rounds val, infinite and NaN values become nil.
func RoundNullable(val float64, precision uint) *float64 {
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return nil
	}
	v := RoundFloat(val, precision)
	return &v
}

// FloatParam parses the query parameter key as float, def is returned if it is missing.
func FloatParam(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.WrapErrorf(err, domain.ErrInvalidArgument, "query parameter %s must be a number", key)
	}
	return v, nil
}
