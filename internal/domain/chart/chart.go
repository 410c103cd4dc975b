package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cosmichub/synastry/pkg/errors"
)

// NumHouses is the number of houses in a chart's house division.
const NumHouses = 12

// Chart is a birth chart reduced to what the synastry engine needs: one
// ecliptic longitude per canonical body and an ordered list of twelve house
// cusps.  Cusp i marks the start of house i+1; the span wraps at 0°/360°.
//
// A Chart is immutable once constructed through New; all engine operations
// treat it as read-only.
type Chart struct {
	planets map[Body]float64
	cusps   [NumHouses]float64
}

// New constructs a validated Chart.  Every canonical body must be present
// with a longitude in [0, 360); a missing body is an error, never a silent
// default.  Cusps must contain exactly twelve longitudes in [0, 360).
func New(planets map[Body]float64, cusps []float64) (*Chart, error) {
	c := &Chart{planets: make(map[Body]float64, NumBodies)}

	for _, b := range Bodies {
		lon, ok := planets[b]
		if !ok {
			return nil, errors.New(errors.ErrCodeChartMissingBody,
				"missing planetary body").WithDetail("body=" + b.String())
		}
		if lon < 0 || lon >= 360 {
			return nil, errors.New(errors.ErrCodeChartBadLongitude,
				"planet longitude out of range [0, 360)").
				WithDetail(b.String() + "=" + strconv.FormatFloat(lon, 'g', -1, 64))
		}
		c.planets[b] = lon
	}

	if len(cusps) != NumHouses {
		return nil, errors.New(errors.ErrCodeChartBadCusps,
			"chart requires exactly 12 house cusps").
			WithDetail("got=" + strconv.Itoa(len(cusps)))
	}
	for i, cusp := range cusps {
		if cusp < 0 || cusp >= 360 {
			return nil, errors.New(errors.ErrCodeChartBadCusps,
				"house cusp out of range [0, 360)").
				WithDetail("cusp[" + strconv.Itoa(i) + "]=" + strconv.FormatFloat(cusp, 'g', -1, 64))
		}
		c.cusps[i] = cusp
	}

	return c, nil
}

// Longitude returns the ecliptic longitude of b.  The second return value is
// false when b is not a canonical body; a validated Chart always carries all
// ten canonical bodies.
func (c *Chart) Longitude(b Body) (float64, bool) {
	lon, ok := c.planets[b]
	return lon, ok
}

// Longitudes returns the ten longitudes in canonical body order.
func (c *Chart) Longitudes() [NumBodies]float64 {
	var out [NumBodies]float64
	for i, b := range Bodies {
		out[i] = c.planets[b]
	}
	return out
}

// Cusps returns the twelve house cusps in house order.
func (c *Chart) Cusps() [NumHouses]float64 {
	return c.cusps
}

// Digest returns a hex-encoded SHA-256 digest of the chart's canonical
// serialization (longitudes in body order, then cusps in house order).
// Two charts with identical positions share a digest, which makes it the
// building block for order-independent cache keys.
func (c *Chart) Digest() string {
	var sb strings.Builder
	for _, b := range Bodies {
		sb.WriteString(string(b))
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(c.planets[b], 'g', -1, 64))
		sb.WriteByte(';')
	}
	for _, cusp := range c.cusps {
		sb.WriteString(strconv.FormatFloat(cusp, 'g', -1, 64))
		sb.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
