package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMapsBaseURL = "https://maps.googleapis.com/maps/api"

// PlaceDetails mirrors the fields of a Places text search result that the
// application consumes.
type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now,omitempty"`
	} `json:"opening_hours,omitempty"`
	Types []string `json:"types,omitempty"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// DistanceResult is one origin/destination pair from the Distance Matrix.
type DistanceResult struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Distance    textValue `json:"distance"`
	Duration    textValue `json:"duration"`
	Status      string    `json:"status"`
}

// MapsService is a thin client over the Google Maps Places and Distance
// Matrix web APIs.
type MapsService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewMapsService(apiKey string) *MapsService {
	return &MapsService{
		apiKey:     apiKey,
		baseURL:    defaultMapsBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewMapsServiceWithBaseURL is used by tests to point the client at a fake
// upstream server.
func NewMapsServiceWithBaseURL(apiKey, baseURL string) *MapsService {
	s := NewMapsService(apiKey)
	s.baseURL = baseURL
	return s
}

// SearchPlaces runs a Places text search. An optional location narrows the
// search to a 5km radius.
func (s *MapsService) SearchPlaces(ctx context.Context, query, location string) ([]PlaceDetails, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("google maps API key not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", s.apiKey)
	if location != "" {
		params.Set("location", location)
		params.Set("radius", "5000")
	}

	var response struct {
		Results      []PlaceDetails `json:"results"`
		Status       string         `json:"status"`
		ErrorMessage string         `json:"error_message"`
	}
	if err := s.getJSON(ctx, "/place/textsearch/json", params, &response); err != nil {
		return nil, err
	}

	if response.Status != "OK" && response.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API error: %s - %s", response.Status, response.ErrorMessage)
	}

	return response.Results, nil
}

// DistanceMatrix returns distance and duration for each origin/destination
// pair the upstream reports. Pairs the upstream omits are not fabricated.
func (s *MapsService) DistanceMatrix(ctx context.Context, origins, destinations []string, mode string) ([]DistanceResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("google maps API key not configured")
	}
	if mode == "" {
		mode = "driving"
	}

	params := url.Values{}
	params.Set("origins", joinPipe(origins))
	params.Set("destinations", joinPipe(destinations))
	params.Set("mode", mode)
	params.Set("key", s.apiKey)

	var response struct {
		Rows []struct {
			Elements []struct {
				Distance textValue `json:"distance"`
				Duration textValue `json:"duration"`
				Status   string    `json:"status"`
			} `json:"elements"`
		} `json:"rows"`
		Status string `json:"status"`
	}
	if err := s.getJSON(ctx, "/distancematrix/json", params, &response); err != nil {
		return nil, err
	}

	if response.Status != "OK" {
		return nil, fmt.Errorf("distance matrix API error: %s", response.Status)
	}

	var results []DistanceResult
	for i, row := range response.Rows {
		if i >= len(origins) {
			break
		}
		for j, element := range row.Elements {
			if j >= len(destinations) {
				break
			}
			results = append(results, DistanceResult{
				Origin:      origins[i],
				Destination: destinations[j],
				Distance:    element.Distance,
				Duration:    element.Duration,
				Status:      element.Status,
			})
		}
	}

	return results, nil
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StaticMapURL builds a static map image URL with lettered markers.
func (s *MapsService) StaticMapURL(locations []LatLng, width, height int) string {
	u := fmt.Sprintf("%s/staticmap?size=%dx%d&key=%s", s.baseURL, width, height, url.QueryEscape(s.apiKey))
	for i, loc := range locations {
		label := string(rune('A' + i))
		u += fmt.Sprintf("&markers=label:%s|%f,%f", label, loc.Lat, loc.Lng)
	}
	return u
}

// DirectionsURL builds a shareable Google Maps directions link.
func DirectionsURL(origin, destination string, waypoints []string) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", origin)
	params.Set("destination", destination)
	if len(waypoints) > 0 {
		params.Set("waypoints", joinPipe(waypoints))
	}
	return "https://www.google.com/maps/dir/?" + params.Encode()
}

func (s *MapsService) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("maps request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps request failed: status code %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func joinPipe(values []string) string {
	return strings.Join(values, "|")
}
