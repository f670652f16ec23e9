package weather

import (
	"context"
	"encoding/json"
)

// Document is the combined weather view assembled for one lookup. The
// current, forecast and historical payloads are kept exactly as the
// upstream providers returned them; Historical is null when no date range
// was requested.
type Document struct {
	LocationName    string          `json:"location_name"`
	Lat             float64         `json:"lat"`
	Lon             float64         `json:"lon"`
	Current         json.RawMessage `json:"current"`
	Forecast        json.RawMessage `json:"forecast"`
	Historical      json.RawMessage `json:"historical"`
	YoutubeSearch   string          `json:"youtube_search"`
	GoogleMapsEmbed string          `json:"google_maps_embed"`
}

// ConditionsProvider serves current conditions and the 5-day forecast for
// a coordinate pair.
type ConditionsProvider interface {
	Current(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// ArchiveProvider serves daily historical temperatures over a date range.
type ArchiveProvider interface {
	DailyTemperatures(ctx context.Context, lat, lon float64, startDate, endDate string) (json.RawMessage, error)
}
