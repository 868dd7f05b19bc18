package scenes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"chloriseye/raster"
)

// SearchRequest filters the archive by collection, AOI and date range. The
// archive clips every returned scene to the AOI polygon.
type SearchRequest struct {
	Collection string          `json:"collection"`
	GeoJSON    json.RawMessage `json:"geojson"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
}

type searchResponse struct {
	Scenes []Scene `json:"scenes"`
}

// Client calls the scene archive service.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string) *Client {
	if base == "" || base == "local" {
		base = "http://127.0.0.1:8000"
	}

	return &Client{
		base: base,
		// Archive queries move whole clipped rasters; give them room.
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

// Search calls POST {base}/scenes/search with the given filter.
func (c *Client) Search(ctx context.Context, in SearchRequest) ([]Scene, error) {
	if len(in.GeoJSON) == 0 {
		return nil, fmt.Errorf("empty geojson")
	}

	if in.Collection == "" {
		return nil, fmt.Errorf("empty collection")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal archive req: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/scenes/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive call failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("archive non-2xx: %s, body: %s", resp.Status, string(data))
	}

	var out searchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode archive resp: %w", err)
	}

	return out.Scenes, nil
}

// Fetch searches the archive and decodes every hit into a raster image,
// sorted by acquisition time.
func (c *Client) Fetch(ctx context.Context, in SearchRequest) ([]*raster.Image, error) {
	found, err := c.Search(ctx, in)
	if err != nil {
		return nil, err
	}

	images := make([]*raster.Image, 0, len(found))

	for i := range found {
		im, err := found[i].Image()
		if err != nil {
			return nil, err
		}

		images = append(images, im)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Time.Before(images[j].Time) })

	return images, nil
}
