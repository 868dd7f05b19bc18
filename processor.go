// file: processor.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"chloriseye/models"
	"chloriseye/pipeline"
	"chloriseye/raster"
	"chloriseye/scenes"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// runTimeout bounds one background analysis, archive fetch included.
const runTimeout = 10 * time.Minute

// startRun inserts a processing report for the field and launches the
// analysis in the background. The returned report carries the operation id
// the caller polls on.
func (a *App) startRun(ctx context.Context, f *models.Field, product models.ReportProduct) (*models.Report, error) {
	geom, err := json.Marshal(f.Geometry)
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}

	now := time.Now().UTC()
	rep := &models.Report{
		OperationID: primitive.NewObjectID().Hex(),
		OwnerID:     f.OwnerID,
		FieldID:     f.ID.Hex(),
		Product:     product,
		Status:      models.ReportStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
		Dependent:   a.cfg.Pipeline.Dependent,
		Order:       a.cfg.Pipeline.Order,
	}

	if _, err := a.reports.InsertOne(ctx, rep); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	go a.runAnalysis(rep.OperationID, product, geom)

	return rep, nil
}

// runAnalysis executes one report run end to end: fetch the clipped scene
// series for the AOI, run the configured product, persist the outcome.
func (a *App) runAnalysis(opID string, product models.ReportProduct, geom json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	pc := a.cfg.Pipeline
	images, err := a.archive.Fetch(ctx, scenes.SearchRequest{
		Collection: a.cfg.Collection,
		GeoJSON:    geom,
		StartDate:  pc.StartDate.Format("2006-01-02"),
		EndDate:    pc.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		a.finishRun(opID, nil, fmt.Errorf("fetch scenes: %w", err))
		return
	}

	var result bson.M

	switch product {
	case models.ProductHarmonicFit:
		res, err := a.pipe.HarmonicFit(images)
		if err != nil {
			a.finishRun(opID, nil, err)
			return
		}
		result = bson.M{"monthly": fitRecords(res)}
	default:
		res, err := a.pipe.Anomalies(images)
		if err != nil {
			a.finishRun(opID, nil, err)
			return
		}
		result = bson.M{
			"monthly":     anomalyRecords(res, pc.Dependent),
			"climatology": climatologyRecords(res.Climatology),
		}
	}

	a.finishRun(opID, result, nil)
}

// finishRun flips the report to its terminal status. Runs on its own
// context so a timed-out analysis can still record its failure.
func (a *App) finishRun(opID string, result bson.M, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if cause != nil {
		set["status"] = models.ReportStatusError
		set["errorMessage"] = cause.Error()
		log.Printf("run %s failed: %v", opID, cause)
	} else {
		set["status"] = models.ReportStatusReady
		for k, v := range result {
			set[k] = v
		}
	}

	if _, err := a.reports.UpdateOne(ctx, bson.M{"operation_id": opID}, bson.M{"$set": set}); err != nil {
		log.Printf("run %s: persist result: %v", opID, err)
	}
}

// anomalyRecords flattens an anomaly run into per-month documents: the
// observed dependent mean, its detrended residual and the z-score.
func anomalyRecords(res *pipeline.AnomalyResult, dependent string) []models.MonthlyRecord {
	comps := res.Composites
	observed := pipeline.ReduceMean(comps, pipeline.BandSeries(comps, dependent))
	detrended := pipeline.ReduceMean(comps, res.Detrended)

	out := make([]models.MonthlyRecord, len(comps))
	for i := range comps {
		out[i] = models.MonthlyRecord{
			Date:      comps[i].Date,
			Time:      comps[i].Time,
			Images:    comps[i].Images,
			Mean:      observed[i].Value,
			Detrended: detrended[i].Value,
			ZScore:    res.Series[i].Value,
		}
	}

	return out
}

// fitRecords flattens a harmonic-fit run into per-month documents.
func fitRecords(res *pipeline.FitResult) []models.MonthlyRecord {
	comps := res.Composites

	out := make([]models.MonthlyRecord, len(comps))
	for i := range comps {
		out[i] = models.MonthlyRecord{
			Date:       comps[i].Date,
			Time:       comps[i].Time,
			Images:     comps[i].Images,
			Mean:       res.DependentSeries[i].Value,
			Fitted:     res.FittedSeries[i].Value,
			Difference: res.DifferenceSeries[i].Value,
		}
	}

	return out
}

// climatologyRecords reduces per-month baseline grids to their spatial means.
func climatologyRecords(clim []pipeline.MonthStats) []models.MonthClimatology {
	out := make([]models.MonthClimatology, 0, len(clim))
	for i := range clim {
		out = append(out, models.MonthClimatology{
			Month:  clim[i].Month,
			Years:  clim[i].Years,
			Median: gridMean(clim[i].Median),
			StdDev: gridMean(clim[i].StdDev),
		})
	}

	return out
}

// gridMean reduces a grid to its spatial mean, nil when nothing is valid.
func gridMean(g *raster.Grid) *float64 {
	if g == nil {
		return nil
	}

	m, ok := g.MeanValid()
	if !ok {
		return nil
	}

	return &m
}
