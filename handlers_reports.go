package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"chloriseye/chart"
	"chloriseye/models"
	"chloriseye/pipeline"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// latestReport returns the newest report for a field, nil when none exist.
func (a *App) latestReport(ctx context.Context, fieldID string, owner primitive.ObjectID) (*models.Report, error) {
	var rep models.Report

	err := a.reports.FindOne(
		ctx,
		bson.M{"fieldId": fieldID, "ownerId": owner},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&rep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rep, nil
}

// loadReport fetches one report by operation id, scoped to the caller.
func (a *App) loadReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	uid := mustUserID(r)
	opID := chi.URLParam(r, "opID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var rep models.Report
	if err := a.reports.FindOne(ctx, bson.M{"operation_id": opID, "ownerId": uid}).Decode(&rep); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}

	return &rep, true
}

// handleStartAnalysis launches a new run for the field and returns the
// operation id to poll.
func (a *App) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req analyzeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Product == "" {
		req.Product = models.ProductAnomaly
	}
	if req.Product != models.ProductAnomaly && req.Product != models.ProductHarmonicFit {
		http.Error(w, "unknown product", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var f models.Field
	if err := a.fields.FindOne(ctx, bson.M{"_id": oid, "ownerId": uid}).Decode(&f); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	rep, err := a.startRun(ctx, &f, req.Product)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(startedResp{OperationID: rep.OperationID, Status: rep.Status})
}

// handleListFieldReports lists a field's runs, newest first, without the
// bulky series payloads.
func (a *App) handleListFieldReports(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	cur, err := a.reports.Find(
		ctx,
		bson.M{"fieldId": oid.Hex(), "ownerId": uid},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetProjection(bson.M{"monthly": 0, "climatology": 0}),
	)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var out []models.Report
	if err := cur.All(ctx, &out); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(out)
}

// handleGetReport returns one report with its full payload.
func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.loadReport(w, r)
	if !ok {
		return
	}

	_ = json.NewEncoder(w).Encode(rep)
}

// handleReportSeries returns the monthly series of a finished report.
func (a *App) handleReportSeries(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.loadReport(w, r)
	if !ok {
		return
	}
	if rep.Status != models.ReportStatusReady {
		http.Error(w, "report not ready", http.StatusConflict)
		return
	}

	_ = json.NewEncoder(w).Encode(rep.Monthly)
}

// handleReportClimatology returns the per-calendar-month baseline of a
// finished anomaly report.
func (a *App) handleReportClimatology(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.loadReport(w, r)
	if !ok {
		return
	}
	if rep.Status != models.ReportStatusReady {
		http.Error(w, "report not ready", http.StatusConflict)
		return
	}
	if len(rep.Climatology) == 0 {
		http.Error(w, "no climatology", http.StatusNotFound)
		return
	}

	_ = json.NewEncoder(w).Encode(rep.Climatology)
}

// handleReportChart renders a finished report as a standalone HTML chart.
func (a *App) handleReportChart(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.loadReport(w, r)
	if !ok {
		return
	}
	if rep.Status != models.ReportStatusReady {
		http.Error(w, "report not ready", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var err error

	switch rep.Product {
	case models.ProductHarmonicFit:
		err = chart.RenderPage(w, chart.FitLine(
			rep.Dependent+" harmonic fit",
			monthlyColumn(rep.Monthly, func(m *models.MonthlyRecord) *float64 { return m.Mean }),
			monthlyColumn(rep.Monthly, func(m *models.MonthlyRecord) *float64 { return m.Fitted }),
			monthlyColumn(rep.Monthly, func(m *models.MonthlyRecord) *float64 { return m.Difference }),
		))
	default:
		err = chart.RenderPage(w, chart.AnomalyLine(
			rep.Dependent+" anomaly",
			monthlyColumn(rep.Monthly, func(m *models.MonthlyRecord) *float64 { return m.ZScore }),
		))
	}
	if err != nil {
		log.Printf("render chart %s: %v", rep.OperationID, err)
	}
}

// monthlyColumn projects one value column of the stored records into
// chartable points.
func monthlyColumn(monthly []models.MonthlyRecord, pick func(*models.MonthlyRecord) *float64) []pipeline.Point {
	out := make([]pipeline.Point, len(monthly))

	for i := range monthly {
		out[i] = pipeline.Point{Time: monthly[i].Time, Date: monthly[i].Date, Value: pick(&monthly[i])}
	}

	return out
}
