package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field — a monitored area of interest with geometry and user-provided
// metadata. Analysis runs and their series are NOT stored here; they live
// in the "reports" collection (see models/report.go).
type Field struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId"      json:"ownerId"`
	Name      string             `bson:"name"         json:"name"`
	Geometry  map[string]any     `bson:"geometry"     json:"geometry"` // GeoJSON Polygon/MultiPolygon
	CreatedAt time.Time          `bson:"createdAt"    json:"createdAt"`

	// Region records the administrative area the geometry was resolved
	// from, when the field was created by name instead of by polygon.
	Region string `bson:"region,omitempty" json:"region,omitempty"`

	// Injected-only (NOT stored in Mongo): state of the latest run.
	Status    ReportStatus `bson:"-" json:"status"`
	LatestRun string       `bson:"-" json:"latestRun,omitempty"`

	// User-facing metadata
	Meta *FieldMeta `bson:"meta,omitempty" json:"meta,omitempty"`
}

type FieldMeta struct {
	AreaHa    *float64 `bson:"areaHa,omitempty"    json:"areaHa,omitempty"` // area in hectares
	Notes     string   `bson:"notes,omitempty"     json:"notes,omitempty"`
	LandCover string   `bson:"landCover,omitempty" json:"landCover,omitempty"` // forest | steppe | cropland | etc.
}
