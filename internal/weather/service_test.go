package weather

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type fakeConditions struct {
	current  json.RawMessage
	forecast json.RawMessage
	err      error

	currentCalls  int
	forecastCalls int
}

func (f *fakeConditions) Current(_ context.Context, lat, lon float64) (json.RawMessage, error) {
	f.currentCalls++
	return f.current, f.err
}

func (f *fakeConditions) Forecast(_ context.Context, lat, lon float64) (json.RawMessage, error) {
	f.forecastCalls++
	return f.forecast, f.err
}

type fakeArchive struct {
	payload json.RawMessage
	err     error

	calls     int
	lastStart string
	lastEnd   string
}

func (f *fakeArchive) DailyTemperatures(_ context.Context, lat, lon float64, startDate, endDate string) (json.RawMessage, error) {
	f.calls++
	f.lastStart = startDate
	f.lastEnd = endDate
	return f.payload, f.err
}

func strPtr(s string) *string { return &s }

func TestFetchWithoutRangeSkipsArchive(t *testing.T) {
	cond := &fakeConditions{
		current:  json.RawMessage(`{"temp":12.5}`),
		forecast: json.RawMessage(`{"list":[]}`),
	}
	arch := &fakeArchive{}
	svc := NewService(cond, arch)

	doc, err := svc.Fetch(context.Background(), "Paris, FR", 48.8566, 2.3522, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.calls != 0 {
		t.Fatalf("archive should not be queried without a date range")
	}
	if doc.Historical != nil {
		t.Fatalf("expected nil historical, got %s", doc.Historical)
	}

	// A nil historical payload must serialize as JSON null.
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"historical":null`) {
		t.Fatalf("expected historical null in %s", out)
	}
}

func TestFetchWithRangeQueriesArchive(t *testing.T) {
	cond := &fakeConditions{
		current:  json.RawMessage(`{}`),
		forecast: json.RawMessage(`{}`),
	}
	arch := &fakeArchive{payload: json.RawMessage(`{"daily":{}}`)}
	svc := NewService(cond, arch)

	doc, err := svc.Fetch(context.Background(), "Paris, FR", 48.8566, 2.3522, strPtr("2024-01-01"), strPtr("2024-01-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.calls != 1 {
		t.Fatalf("expected one archive call, got %d", arch.calls)
	}
	if arch.lastStart != "2024-01-01" || arch.lastEnd != "2024-01-03" {
		t.Fatalf("unexpected archive range: %s..%s", arch.lastStart, arch.lastEnd)
	}
	if string(doc.Historical) != `{"daily":{}}` {
		t.Fatalf("unexpected historical payload: %s", doc.Historical)
	}
}

// An inverted range fails before any provider call is issued.
func TestFetchInvalidDateRange(t *testing.T) {
	cond := &fakeConditions{}
	arch := &fakeArchive{}
	svc := NewService(cond, arch)

	_, err := svc.Fetch(context.Background(), "x", 0, 0, strPtr("2024-01-03"), strPtr("2024-01-01"))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if cond.currentCalls != 0 || cond.forecastCalls != 0 || arch.calls != 0 {
		t.Fatalf("no provider call should be issued for an invalid range")
	}
}

func TestFetchInvalidDateFormat(t *testing.T) {
	svc := NewService(&fakeConditions{}, &fakeArchive{})

	for _, bad := range []string{"01-01-2024", "2024/01/01", "yesterday"} {
		_, err := svc.Fetch(context.Background(), "x", 0, 0, strPtr(bad), strPtr("2024-01-05"))
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("%q: expected ErrInvalidDateFormat, got %v", bad, err)
		}
	}
}

// A single supplied date is ignored, same as no range at all.
func TestFetchSingleDateIgnored(t *testing.T) {
	cond := &fakeConditions{current: json.RawMessage(`{}`), forecast: json.RawMessage(`{}`)}
	arch := &fakeArchive{}
	svc := NewService(cond, arch)

	doc, err := svc.Fetch(context.Background(), "x", 0, 0, strPtr("2024-01-01"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.calls != 0 || doc.Historical != nil {
		t.Fatalf("archive should not be queried with only a start date")
	}
}

func TestFetchProviderErrorPropagates(t *testing.T) {
	provErr := &ProviderError{Provider: "current weather", StatusCode: 502, Body: "bad gateway"}
	svc := NewService(&fakeConditions{err: provErr}, &fakeArchive{})

	_, err := svc.Fetch(context.Background(), "x", 0, 0, nil, nil)
	var got *ProviderError
	if !errors.As(err, &got) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if got.StatusCode != 502 || !strings.Contains(got.Error(), "bad gateway") {
		t.Fatalf("provider error lost upstream detail: %v", got)
	}
}

func TestFetchFillsDerivedLinks(t *testing.T) {
	cond := &fakeConditions{current: json.RawMessage(`{}`), forecast: json.RawMessage(`{}`)}
	svc := NewService(cond, &fakeArchive{})

	doc, err := svc.Fetch(context.Background(), "Paris, FR", 48.8566, 2.3522, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.YoutubeSearch != YouTubeSearchURL("Paris, FR") {
		t.Fatalf("unexpected video link: %q", doc.YoutubeSearch)
	}
	if doc.GoogleMapsEmbed != GoogleMapsEmbedURL(48.8566, 2.3522) {
		t.Fatalf("unexpected map link: %q", doc.GoogleMapsEmbed)
	}
}
