package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus tracks analysis run states.
type ReportStatus string

const (
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusReady      ReportStatus = "ready"
	ReportStatusError      ReportStatus = "error"
)

// ReportProduct selects which end product a run computes.
type ReportProduct string

const (
	ProductAnomaly     ReportProduct = "anomaly"
	ProductHarmonicFit ReportProduct = "harmonic_fit"
)

// Report is one analysis run persisted to the "reports" collection.
type Report struct {
	OperationID string             `bson:"operation_id"      json:"operation_id"`
	OwnerID     primitive.ObjectID `bson:"ownerId"           json:"-"`
	FieldID     string             `bson:"fieldId,omitempty" json:"fieldId,omitempty"`
	Product     ReportProduct      `bson:"product"           json:"product"`
	Status      ReportStatus       `bson:"status"            json:"status"`     // processing | ready | error
	CreatedAt   time.Time          `bson:"created_at"        json:"created_at"` // naive UTC in Mongo
	UpdatedAt   time.Time          `bson:"updated_at"        json:"updated_at"` // naive UTC in Mongo

	// Run parameters, denormalized for display.
	Dependent string `bson:"dependent" json:"dependent"` // band the fit ran against
	Order     int    `bson:"order"     json:"order"`     // harmonic order

	Monthly      []MonthlyRecord    `bson:"monthly,omitempty"      json:"monthly,omitempty"`
	Climatology  []MonthClimatology `bson:"climatology,omitempty"  json:"climatology,omitempty"`
	ErrorMessage string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
}

// MonthlyRecord is one month of the region-reduced series. Nil values mark
// months without usable data; Images == 0 marks months with no scenes at
// all.
type MonthlyRecord struct {
	Date   string    `bson:"date"   json:"date"` // YYYY-MM
	Time   time.Time `bson:"time"   json:"time"`
	Images int       `bson:"images" json:"images"`

	Mean      *float64 `bson:"mean,omitempty"      json:"mean"`      // observed dependent mean
	Detrended *float64 `bson:"detrended,omitempty" json:"detrended"` // observed minus fitted
	ZScore    *float64 `bson:"zscore,omitempty"    json:"zscore"`

	// Harmonic-fit product only.
	Fitted     *float64 `bson:"fitted,omitempty"     json:"fitted,omitempty"`
	Difference *float64 `bson:"difference,omitempty" json:"difference,omitempty"`
}

// MonthClimatology is the per-calendar-month baseline of a run.
type MonthClimatology struct {
	Month  int      `bson:"month"            json:"month"` // 1..12
	Years  int      `bson:"years"            json:"years"`
	Median *float64 `bson:"median,omitempty" json:"median"`
	StdDev *float64 `bson:"stddev,omitempty" json:"stddev"`
}
