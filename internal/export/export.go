// Package export renders stored records into downloadable formats.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avelko/weather-records/internal/store"
)

// ErrUnsupportedFormat is returned for any format token other than
// json, csv, xml or pdf.
var ErrUnsupportedFormat = errors.New("unsupported format, choose json, csv, xml, or pdf")

// Result is a rendered export. Filename is empty for inline responses.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ValidateFormat checks the format token without touching a record, so
// callers can reject bad tokens before any store lookup.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "csv", "xml", "pdf":
		return nil
	default:
		return ErrUnsupportedFormat
	}
}

// Render serializes a record in the requested format. The format token is
// case-insensitive.
func Render(rec store.Record, format string) (Result, error) {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(rec)
	case "csv":
		return renderCSV(rec)
	case "xml":
		return renderXML(rec)
	case "pdf":
		return renderPDF(rec)
	default:
		return Result{}, ErrUnsupportedFormat
	}
}

// renderJSON returns the record hierarchically, the weather document
// embedded as-is. JSON exports are served inline, not as attachments.
func renderJSON(rec store.Record) (Result, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: data, ContentType: "application/json"}, nil
}

func renderCSV(rec store.Record) (Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "location_name", "lat", "lon", "start_date", "end_date", "created_at", "weather_json"}
	row := []string{
		strconv.FormatInt(rec.ID, 10),
		rec.LocationName,
		formatFloat(rec.Lat),
		formatFloat(rec.Lon),
		orEmpty(rec.StartDate),
		orEmpty(rec.EndDate),
		rec.CreatedAt.Format(time.RFC3339),
		weatherJSON(rec),
	}
	if err := w.Write(header); err != nil {
		return Result{}, err
	}
	if err := w.Write(row); err != nil {
		return Result{}, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, err
	}

	return Result{
		Data:        buf.Bytes(),
		ContentType: "text/csv",
		Filename:    filename(rec.ID, "csv"),
	}, nil
}

// xmlRecord is the flat export shape: the weather document stays a single
// serialized JSON cell, mirroring the CSV column.
type xmlRecord struct {
	XMLName      xml.Name `xml:"record"`
	ID           int64    `xml:"id"`
	LocationName string   `xml:"location_name"`
	Lat          float64  `xml:"lat"`
	Lon          float64  `xml:"lon"`
	StartDate    string   `xml:"start_date"`
	EndDate      string   `xml:"end_date"`
	CreatedAt    string   `xml:"created_at"`
	WeatherData  string   `xml:"weather_data"`
}

func renderXML(rec store.Record) (Result, error) {
	out := xmlRecord{
		ID:           rec.ID,
		LocationName: rec.LocationName,
		Lat:          rec.Lat,
		Lon:          rec.Lon,
		StartDate:    orEmpty(rec.StartDate),
		EndDate:      orEmpty(rec.EndDate),
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
		WeatherData:  weatherJSON(rec),
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return Result{}, err
	}

	return Result{
		Data:        append([]byte(xml.Header), data...),
		ContentType: "application/xml",
		Filename:    filename(rec.ID, "xml"),
	}, nil
}

func filename(id int64, ext string) string {
	return fmt.Sprintf("record_%d.%s", id, ext)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func weatherJSON(rec store.Record) string {
	if rec.WeatherData == nil {
		return "null"
	}
	return string(rec.WeatherData)
}
