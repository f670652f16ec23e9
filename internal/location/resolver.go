package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid location input, provide query or lat+lon")
	ErrNotFound     = errors.New("no geocoding matches found")
)

// Match is a single geocoding result.
type Match struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocoder resolves free-text queries and coordinates against a geocoding
// API.
type Geocoder interface {
	Forward(ctx context.Context, query string, limit int) ([]Match, error)
	Reverse(ctx context.Context, lat, lon float64) ([]Match, error)
}

// Input is the heterogeneous location input accepted by the resolver.
// Lat+Lon take priority over Query when both are present.
type Input struct {
	Query string
	Lat   *float64
	Lon   *float64
}

// Resolved is a canonical coordinate pair plus a human-readable display
// name.
type Resolved struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Resolver turns heterogeneous location input into a Resolved triple.
type Resolver struct {
	geocoder Geocoder
}

// NewResolver creates a new Resolver.
func NewResolver(g Geocoder) *Resolver {
	return &Resolver{geocoder: g}
}

// Resolve picks the resolution path for the input: explicit coordinates
// first, then a free-text query, otherwise ErrInvalidInput.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Resolved, error) {
	if in.Lat != nil && in.Lon != nil {
		return r.fromCoordinates(ctx, *in.Lat, *in.Lon), nil
	}
	if q := strings.TrimSpace(in.Query); q != "" {
		return r.fromQuery(ctx, q)
	}
	return Resolved{}, ErrInvalidInput
}

// fromCoordinates reverse-geocodes for a display name. Reverse geocoding is
// best effort: a provider error or an empty match list falls back to the
// raw coordinate string and is never surfaced to the caller.
func (r *Resolver) fromCoordinates(ctx context.Context, lat, lon float64) Resolved {
	res := Resolved{Lat: lat, Lon: lon, DisplayName: coordString(lat, lon)}

	matches, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil || len(matches) == 0 {
		return res
	}
	if name := displayName(matches[0]); name != "" {
		res.DisplayName = name
	}
	return res
}

func (r *Resolver) fromQuery(ctx context.Context, q string) (Resolved, error) {
	// A comma-separated query may be a raw "lat,lon" pair; only when both
	// parts parse as floats is it treated as coordinates.
	if strings.Contains(q, ",") {
		parts := strings.SplitN(q, ",", 2)
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr == nil && lonErr == nil {
			return r.fromCoordinates(ctx, lat, lon), nil
		}
	}

	matches, err := r.geocoder.Forward(ctx, q, 1)
	if err != nil {
		return Resolved{}, err
	}
	if len(matches) == 0 {
		return Resolved{}, fmt.Errorf("%w for query: %s", ErrNotFound, q)
	}

	m := matches[0]
	name := m.Name
	if name == "" {
		name = q
	}
	if m.State != "" {
		name = name + ", " + m.State
	}
	if m.Country != "" {
		name = name + ", " + m.Country
	}
	return Resolved{Lat: m.Lat, Lon: m.Lon, DisplayName: name}, nil
}

func displayName(m Match) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Name, m.State, m.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func coordString(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}
