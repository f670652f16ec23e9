package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/avelko/weather-records/internal/store"
)

// PDF layout on a letter page in points. The cursor starts 42pt below the
// top edge, advances 12pt per weather line, and a new page starts once it
// would pass within 60pt of the bottom edge. Each weather line is truncated
// to 120 characters.
const (
	pdfMarginX    = 40.0
	pdfTopY       = 42.0
	pdfLineStep   = 12.0
	pdfBottomPad  = 60.0
	pdfMaxLineLen = 120
)

func renderPDF(rec store.Record) (Result, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	_, pageH := pdf.GetPageSize()

	y := pdfTopY
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pdfMarginX, y, fmt.Sprintf("Weather Record #%d - %s", rec.ID, rec.LocationName))
	y += 30

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfMarginX, y, fmt.Sprintf("Latitude: %s   Longitude: %s", formatFloat(rec.Lat), formatFloat(rec.Lon)))
	y += 20
	pdf.Text(pdfMarginX, y, fmt.Sprintf("Date Range: %s to %s", orDash(rec.StartDate), orDash(rec.EndDate)))
	y += 20
	pdf.Text(pdfMarginX, y, "Created at: "+rec.CreatedAt.Format(time.RFC3339))
	y += 30

	for _, line := range strings.Split(prettyWeather(rec), "\n") {
		if y > pageH-pdfBottomPad {
			pdf.AddPage()
			y = pdfTopY
		}
		if len(line) > pdfMaxLineLen {
			line = line[:pdfMaxLineLen]
		}
		pdf.Text(pdfMarginX, y, line)
		y += pdfLineStep
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Result{}, err
	}
	return Result{
		Data:        buf.Bytes(),
		ContentType: "application/pdf",
		Filename:    filename(rec.ID, "pdf"),
	}, nil
}

// prettyWeather re-indents the stored weather blob, one source line per
// rendered line. An unparsable blob is rendered verbatim.
func prettyWeather(rec store.Record) string {
	if rec.WeatherData == nil {
		return "null"
	}
	var v any
	if err := json.Unmarshal(rec.WeatherData, &v); err != nil {
		return string(rec.WeatherData)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(rec.WeatherData)
	}
	return string(pretty)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
