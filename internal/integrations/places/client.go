package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"googlemaps.github.io/maps"

	"donation-agent/internal/domain"
)

const (
	searchRadiusMeters = 8000
	searchKeyword      = "food bank OR charity OR food donation"
	maxResults         = 5
)

// mapsAPI is the minimal Google Maps interface required by Client.
// *maps.Client from googlemaps.github.io/maps satisfies this interface.
type mapsAPI interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// Getter resolves a named secret, typically from SSM Parameter Store.
type Getter interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// tokenPayload is the JSON shape stored in the parameter store for the key.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client is the organization lookup capability: geocode a free-text
// location, search nearby for donation recipients, then fetch contact
// details per result. A failure is terminal for the attempt; no retries.
type Client struct {
	staticKey string
	getter    Getter
	paramName string

	apiOnce sync.Once
	api     mapsAPI
	apiErr  error
}

type Option func(*Client)

// WithStaticAPIKey supplies the Maps API key directly (CLI deployment,
// key from the environment).
func WithStaticAPIKey(key string) Option {
	return func(c *Client) {
		c.staticKey = strings.TrimSpace(key)
	}
}

// WithKeyParameter resolves the Maps API key lazily from the given
// parameter on first use (Lambda deployment).
func WithKeyParameter(g Getter, name string) Option {
	return func(c *Client) {
		c.getter = g
		c.paramName = strings.TrimSpace(name)
	}
}

// WithMapsAPI injects a Maps API implementation, bypassing key resolution.
func WithMapsAPI(api mapsAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

// NewClient creates a lookup client. A missing API key is reported at
// call time, not here, so the conversation can start with incomplete
// configuration and surface the failure on the first search.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.getter != nil && c.paramName == "" {
		return nil, errors.New("places: key parameter name must not be empty")
	}
	return c, nil
}

// resolveAPI builds the Maps client on first use and reuses it for the
// process lifetime, mirroring the lazy key resolution of the other
// integration clients.
func (c *Client) resolveAPI(ctx context.Context) (mapsAPI, error) {
	c.apiOnce.Do(func() {
		if c.api != nil {
			return
		}
		key, err := c.resolveKey(ctx)
		if err != nil {
			c.apiErr = err
			return
		}
		api, err := maps.NewClient(maps.WithAPIKey(key))
		if err != nil {
			c.apiErr = fmt.Errorf("places: create maps client: %w", err)
			return
		}
		c.api = api
	})
	return c.api, c.apiErr
}

func (c *Client) resolveKey(ctx context.Context) (string, error) {
	if c.staticKey != "" {
		return c.staticKey, nil
	}
	if c.getter == nil {
		return "", errors.New("Google API key not found")
	}
	raw, err := c.getter.Fetch(ctx, c.paramName)
	if err != nil {
		return "", fmt.Errorf("places: fetch API key: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("places: unmarshal API key parameter as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("places: API key parameter is empty")
	}
	return tp.Token, nil
}

// FindRecipients returns up to 5 organizations near the location, in the
// order the places API returned them. The error message is what the
// conversation surfaces, so it stays human-readable.
func (c *Client) FindRecipients(ctx context.Context, location string) ([]domain.Organization, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("places: location must not be empty")
	}

	api, err := c.resolveAPI(ctx)
	if err != nil {
		return nil, err
	}

	geo, err := api.Geocode(ctx, &maps.GeocodingRequest{Address: location})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(geo) == 0 {
		return nil, fmt.Errorf("could not find coordinates for %q", location)
	}

	center := geo[0].Geometry.Location
	resp, err := api.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &center,
		Radius:   searchRadiusMeters,
		Keyword:  searchKeyword,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search failed: %w", err)
	}

	orgs := make([]domain.Organization, 0, maxResults)
	for _, place := range resp.Results {
		if len(orgs) == maxResults {
			break
		}
		if place.PlaceID == "" {
			continue
		}
		details, err := api.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
			PlaceID: place.PlaceID,
			Fields: []maps.PlaceDetailsFieldMask{
				maps.PlaceDetailsFieldMaskName,
				maps.PlaceDetailsFieldMaskVicinity,
				maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
				maps.PlaceDetailsFieldMaskWebsite,
				maps.PlaceDetailsFieldMaskRatings,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("place details failed: %w", err)
		}
		orgs = append(orgs, toOrganization(details))
	}

	if len(orgs) == 0 {
		return nil, errors.New("no organizations found via the places API")
	}
	return orgs, nil
}

func toOrganization(d maps.PlaceDetailsResult) domain.Organization {
	return domain.Organization{
		Name:    orDefault(d.Name, "N/A"),
		Address: orDefault(d.Vicinity, "N/A"),
		Phone:   orDefault(d.FormattedPhoneNumber, domain.ContactUnavailable),
		Website: orDefault(d.Website, domain.ContactUnavailable),
		Rating:  float64(d.Rating),
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
