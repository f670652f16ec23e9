package weather

import (
	"context"
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// Service assembles combined weather documents from the configured
// conditions and archive providers.
type Service struct {
	conditions ConditionsProvider
	archive    ArchiveProvider
}

// NewService creates a new Service.
func NewService(conditions ConditionsProvider, archive ArchiveProvider) *Service {
	return &Service{
		conditions: conditions,
		archive:    archive,
	}
}

// Fetch builds the combined document for resolved coordinates. Current
// conditions and the forecast are fetched unconditionally. When both
// startDate and endDate are given they must be valid YYYY-MM-DD dates with
// startDate <= endDate; only then is the archive queried for daily
// temperatures over the range. The range is validated before any provider
// call is issued.
func (s *Service) Fetch(ctx context.Context, locationName string, lat, lon float64, startDate, endDate *string) (*Document, error) {
	withRange := startDate != nil && endDate != nil
	if withRange {
		if err := validateRange(*startDate, *endDate); err != nil {
			return nil, err
		}
	}

	current, err := s.conditions.Current(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	forecast, err := s.conditions.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var historical json.RawMessage
	if withRange {
		historical, err = s.archive.DailyTemperatures(ctx, lat, lon, *startDate, *endDate)
		if err != nil {
			return nil, err
		}
	}

	return &Document{
		LocationName:    locationName,
		Lat:             lat,
		Lon:             lon,
		Current:         current,
		Forecast:        forecast,
		Historical:      historical,
		YoutubeSearch:   YouTubeSearchURL(locationName),
		GoogleMapsEmbed: GoogleMapsEmbedURL(lat, lon),
	}, nil
}

func validateRange(startDate, endDate string) error {
	sd, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return ErrInvalidDateFormat
	}
	ed, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return ErrInvalidDateFormat
	}
	if sd.After(ed) {
		return ErrInvalidDateRange
	}
	return nil
}
