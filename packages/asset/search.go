package asset

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Search is a search area offered to an asset. Distances are in metres.
type Search struct {
	asset *Asset

	URL        string
	Distance   uint64
	Length     uint64
	SweepWidth uint64
}

// Waypoint is a point along a search path.
type Waypoint struct {
	Latitude  float64
	Longitude float64
}

// FindSearch asks for the closest search the asset can take on from the
// given position.
func (a *Asset) FindSearch(lat, lon float64) (*Search, error) {
	path := fmt.Sprintf("/search/find/closest/?asset_id=%d&latitude=%f&longitude=%f", a.ID, lat, lon)

	res, body, err := getOK(a.conn, path)
	if err != nil {
		return nil, err
	}
	if !res.IsJSON() {
		return nil, ErrNoSearch
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedPayload)
	}

	root := gjson.ParseBytes(body)
	s := &Search{
		asset:      a,
		URL:        root.Get("object_url").String(),
		Distance:   root.Get("distance").Uint(),
		Length:     root.Get("length").Uint(),
		SweepWidth: root.Get("sweep_width").Uint(),
	}
	if s.URL == "" {
		return nil, ErrNoSearch
	}
	return s, nil
}

// SearchAt binds a search the caller already knows the url of.
func (a *Asset) SearchAt(objectURL string) *Search {
	return &Search{asset: a, URL: objectURL}
}

// Waypoints fetches the path of the search. The server sends GeoJSON with
// a single feature whose coordinates are [longitude, latitude] pairs.
func (s *Search) Waypoints() ([]Waypoint, error) {
	_, body, err := getOK(s.asset.conn, s.URL)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w", s.URL, ErrMalformedPayload)
	}
	if err := validateWaypoints(body); err != nil {
		return nil, fmt.Errorf("%s: %w", s.URL, err)
	}

	coords := gjson.GetBytes(body, "features.0.geometry.coordinates").Array()
	waypoints := make([]Waypoint, 0, len(coords))
	for _, c := range coords {
		waypoints = append(waypoints, Waypoint{
			Latitude:  c.Get("1").Float(),
			Longitude: c.Get("0").Float(),
		})
	}
	return waypoints, nil
}

// Accept tells the server the asset has started the search.
func (s *Search) Accept() error {
	return s.action("begin")
}

// Complete tells the server the asset has finished the search.
func (s *Search) Complete() error {
	return s.action("finished")
}

func (s *Search) action(name string) error {
	base, _, found := strings.Cut(s.URL, "/json/")
	if !found {
		return fmt.Errorf("search url %q has no /json/ component: %w", s.URL, ErrMalformedPayload)
	}
	_, _, err := getOK(s.asset.conn, fmt.Sprintf("%s/%s/?asset_id=%d", base, name, s.asset.ID))
	return err
}
