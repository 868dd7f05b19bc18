package main

import (
	"encoding/json"

	"chloriseye/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type createFieldReq struct {
	Name string `json:"name"`
	// Either an explicit GeoJSON Polygon/MultiPolygon, or a named
	// administrative area to resolve through OpenStreetMap.
	Geometry json.RawMessage `json:"geometry,omitempty"`
	Region   string          `json:"region,omitempty"`

	AreaHa    *float64 `json:"areaHa,omitempty"` // stored under meta.areaHa
	Notes     string   `json:"notes,omitempty"`
	LandCover string   `json:"landCover,omitempty"`
}

type analyzeReq struct {
	Product models.ReportProduct `json:"product"` // anomaly | harmonic_fit
}

type startedResp struct {
	OperationID string              `json:"operation_id"`
	Status      models.ReportStatus `json:"status"`
}
