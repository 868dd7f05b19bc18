// Package aoi resolves named places into analysis regions via OpenStreetMap.
package aoi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/serjvanilla/go-overpass"
)

// Area is a rectangular analysis region in WGS84 degrees.
type Area struct {
	Name   string  `json:"name"`
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// GeoJSON renders the area as a closed Polygon ring in lon/lat order.
func (a *Area) GeoJSON() json.RawMessage {
	s := fmt.Sprintf(`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		a.MinLon, a.MinLat,
		a.MaxLon, a.MinLat,
		a.MaxLon, a.MaxLat,
		a.MinLon, a.MaxLat,
		a.MinLon, a.MinLat)

	return json.RawMessage(s)
}

// Resolver looks up administrative boundaries on an Overpass endpoint.
type Resolver struct {
	client  *overpass.Client
	timeout time.Duration
}

func NewResolver(endpoint string, timeout time.Duration) *Resolver {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)

	return &Resolver{
		client:  &client,
		timeout: timeout,
	}
}

// AdminBoundary resolves a named administrative area or populated place to
// its covering rectangle.
func (r *Resolver) AdminBoundary(ctx context.Context, name string) (*Area, error) {
	query := fmt.Sprintf(`
		[out:json];
		(
			way["boundary"="administrative"]["name"="%s"];
			node["place"~"village|town|city"]["name"="%s"];
		);
		out body;
		>;
		out skel qt;
	`, name, name)

	result, err := r.executeQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute boundary query: %w", err)
	}

	return boundsFromResult(name, result)
}

func (r *Resolver) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	_, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	return &result, nil
}

// minSpan keeps point-only results usable as a clipping region.
const minSpan = 0.01

func boundsFromResult(name string, result *overpass.Result) (*Area, error) {
	found := false
	area := &Area{Name: name, MinLat: 90, MinLon: 180, MaxLat: -90, MaxLon: -180}

	fold := func(lat, lon float64) {
		found = true

		if lat < area.MinLat {
			area.MinLat = lat
		}

		if lat > area.MaxLat {
			area.MaxLat = lat
		}

		if lon < area.MinLon {
			area.MinLon = lon
		}

		if lon > area.MaxLon {
			area.MaxLon = lon
		}
	}

	for _, node := range result.Nodes {
		fold(node.Lat, node.Lon)
	}

	for _, way := range result.Ways {
		if way.Bounds != nil {
			fold(way.Bounds.Min.Lat, way.Bounds.Min.Lon)
			fold(way.Bounds.Max.Lat, way.Bounds.Max.Lon)
		}

		for _, node := range way.Nodes {
			fold(node.Lat, node.Lon)
		}
	}

	if !found {
		return nil, fmt.Errorf("no boundary found for %q", name)
	}

	if area.MaxLat-area.MinLat < minSpan {
		mid := (area.MaxLat + area.MinLat) / 2
		area.MinLat, area.MaxLat = mid-minSpan/2, mid+minSpan/2
	}

	if area.MaxLon-area.MinLon < minSpan {
		mid := (area.MaxLon + area.MinLon) / 2
		area.MinLon, area.MaxLon = mid-minSpan/2, mid+minSpan/2
	}

	return area, nil
}
