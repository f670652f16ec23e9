package weather

import (
	"fmt"
	"net/url"
	"strconv"
)

const mapZoom = 16

// YouTubeSearchURL returns a search-results link for travel videos about
// the location.
func YouTubeSearchURL(locationName string) string {
	q := url.Values{}
	q.Set("search_query", locationName+" travel vlog")
	return "https://www.youtube.com/results?" + q.Encode()
}

// GoogleMapsEmbedURL returns an embeddable map URL with the coordinates
// used as both center and marker.
func GoogleMapsEmbedURL(lat, lon float64) string {
	pt := formatCoord(lat) + "," + formatCoord(lon)
	return fmt.Sprintf("https://www.google.com/maps?q=%s&ll=%s&z=%d&output=embed", pt, pt, mapZoom)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
