package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// The tool set is fixed and small, so dispatch is a closed switch on the
// name rather than an open registry.
const (
	ToolSearchVenues      = "search_venues"
	ToolCalculateDistance = "calculate_distance"
)

var ErrUnknownTool = errors.New("unknown tool")

// VenueResult is the reduced projection of a place handed back to the model.
type VenueResult struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Rating       float64  `json:"rating,omitempty"`
	TotalRatings int      `json:"total_ratings,omitempty"`
	PriceLevel   int      `json:"price_level,omitempty"`
	OpenNow      *bool    `json:"open_now,omitempty"`
	Types        []string `json:"types,omitempty"`
}

// LegResult is one origin/destination leg handed back to the model, carrying
// both the human-readable and raw numeric figures.
type LegResult struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Distance        string `json:"distance"`
	Duration        string `json:"duration"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
}

// ToolDispatcher executes the side-effect-free lookups the model may request
// mid-turn.
type ToolDispatcher struct {
	places PlacesClient
}

func NewToolDispatcher(places PlacesClient) *ToolDispatcher {
	return &ToolDispatcher{places: places}
}

// Declarations returns the function declarations advertised to the model.
func (d *ToolDispatcher) Declarations() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolSearchVenues,
				Description: "Search for venues, restaurants, cafes, or places near a location. Returns details like ratings, opening hours, and addresses.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: `What to search for (e.g., "romantic restaurants", "coffee shops", "parks")`,
						},
						"location": {
							Type:        genai.TypeString,
							Description: `Location to search near (e.g., "San Francisco, CA" or lat,lng format)`,
						},
					},
					Required: []string{"query"},
				},
			},
			{
				Name:        ToolCalculateDistance,
				Description: "Calculate distance and travel time between locations. Useful for planning routes and timing.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"origins": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "Starting locations (addresses or place names)",
						},
						"destinations": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "Destination locations (addresses or place names)",
						},
						"mode": {
							Type:        genai.TypeString,
							Description: "Mode of transportation",
						},
					},
					Required: []string{"origins", "destinations"},
				},
			},
		},
	}
}

// Execute runs the named tool with the model-supplied arguments.
func (d *ToolDispatcher) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolSearchVenues:
		return d.searchVenues(ctx, args)
	case ToolCalculateDistance:
		return d.calculateDistance(ctx, args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func (d *ToolDispatcher) searchVenues(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("search_venues requires a non-empty query")
	}
	location, _ := args["location"].(string)

	places, err := d.places.SearchPlaces(ctx, query, location)
	if err != nil {
		return nil, err
	}

	results := make([]VenueResult, 0, len(places))
	for _, p := range places {
		venue := VenueResult{
			Name:         p.Name,
			Address:      p.FormattedAddress,
			Rating:       p.Rating,
			TotalRatings: p.UserRatingsTotal,
			PriceLevel:   p.PriceLevel,
			Types:        p.Types,
		}
		if p.OpeningHours != nil {
			venue.OpenNow = p.OpeningHours.OpenNow
		}
		// Limit to 3 types
		if len(venue.Types) > 3 {
			venue.Types = venue.Types[:3]
		}
		results = append(results, venue)
	}

	return results, nil
}

func (d *ToolDispatcher) calculateDistance(ctx context.Context, args map[string]any) (any, error) {
	origins := stringSlice(args["origins"])
	destinations := stringSlice(args["destinations"])
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, fmt.Errorf("calculate_distance requires non-empty origins and destinations")
	}

	mode, _ := args["mode"].(string)
	if mode == "" {
		mode = "driving"
	}

	legs, err := d.places.DistanceMatrix(ctx, origins, destinations, mode)
	if err != nil {
		return nil, err
	}

	results := make([]LegResult, 0, len(legs))
	for _, leg := range legs {
		results = append(results, LegResult{
			From:            leg.Origin,
			To:              leg.Destination,
			Distance:        leg.Distance.Text,
			Duration:        leg.Duration.Text,
			DistanceMeters:  leg.Distance.Value,
			DurationSeconds: leg.Duration.Value,
		})
	}

	return results, nil
}

// stringSlice coerces a JSON-decoded argument into a string slice.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
