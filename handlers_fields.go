package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"chloriseye/models"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errBadGeometry = errors.New("geometry must be a GeoJSON Polygon or MultiPolygon")

// resolveGeometry turns the request into a stored geometry document: either
// the explicit GeoJSON, or a boundary lookup for the named region.
func (a *App) resolveGeometry(ctx context.Context, req *createFieldReq) (bson.M, error) {
	if len(req.Geometry) > 0 {
		var geom bson.M
		if err := json.Unmarshal(req.Geometry, &geom); err != nil {
			return nil, errBadGeometry
		}
		gt, _ := geom["type"].(string)
		if gt != "Polygon" && gt != "MultiPolygon" {
			return nil, errBadGeometry
		}
		return geom, nil
	}

	area, err := a.areas.AdminBoundary(ctx, req.Region)
	if err != nil {
		return nil, err
	}

	var geom bson.M
	if err := json.Unmarshal(area.GeoJSON(), &geom); err != nil {
		return nil, errBadGeometry
	}
	return geom, nil
}

// handleCreateField inserts a new field and starts its first anomaly run.
func (a *App) handleCreateField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)

	var req createFieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Geometry) == 0 && strings.TrimSpace(req.Region) == "" {
		http.Error(w, "geometry or region is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	geom, err := a.resolveGeometry(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := models.Field{
		OwnerID:   uid,
		Name:      req.Name,
		Geometry:  geom,
		Region:    req.Region,
		CreatedAt: time.Now(),
		Status:    models.ReportStatusProcessing,
	}
	if req.AreaHa != nil || req.Notes != "" || req.LandCover != "" {
		f.Meta = &models.FieldMeta{AreaHa: req.AreaHa, Notes: req.Notes, LandCover: req.LandCover}
	}

	res, err := a.fields.InsertOne(ctx, &f)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	f.ID = res.InsertedID.(primitive.ObjectID)

	if rep, err := a.startRun(ctx, &f, models.ProductAnomaly); err == nil {
		f.LatestRun = rep.OperationID
	}

	_ = json.NewEncoder(w).Encode(f)
}

// handleListFields returns the current user's fields with latest run state.
func (a *App) handleListFields(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	cur, err := a.fields.Find(ctx, bson.M{"ownerId": uid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	var out []models.Field
	if err := cur.All(ctx, &out); err != nil {
		http.Error(w, "decode error", http.StatusInternalServerError)
		return
	}

	for i := range out {
		a.injectRunState(ctx, &out[i])
	}

	_ = json.NewEncoder(w).Encode(out)
}

// handleGetField returns a single field by id (owned by the user).
func (a *App) handleGetField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var f models.Field
	if err := a.fields.FindOne(ctx, bson.M{"_id": oid, "ownerId": uid}).Decode(&f); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	a.injectRunState(ctx, &f)
	_ = json.NewEncoder(w).Encode(f)
}

// handleUpdateField updates name/geometry/meta; a geometry change starts a
// fresh anomaly run.
func (a *App) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	var req createFieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}

	regeo := len(req.Geometry) > 0 || strings.TrimSpace(req.Region) != ""
	if regeo {
		geom, err := a.resolveGeometry(ctx, &req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		set["geometry"] = geom
		set["region"] = req.Region
	}
	if req.AreaHa != nil {
		set["meta.areaHa"] = req.AreaHa // store under nested meta
	}
	if req.Notes != "" {
		set["meta.notes"] = req.Notes
	}
	if req.LandCover != "" {
		set["meta.landCover"] = req.LandCover
	}
	if len(set) == 0 {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	res := a.fields.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "ownerId": uid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var out models.Field
	if err := res.Decode(&out); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if regeo {
		if rep, err := a.startRun(ctx, &out, models.ProductAnomaly); err == nil {
			out.Status = models.ReportStatusProcessing
			out.LatestRun = rep.OperationID
		}
	} else {
		a.injectRunState(ctx, &out)
	}

	_ = json.NewEncoder(w).Encode(out)
}

// handleDeleteField removes a field and every report it produced.
func (a *App) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := a.fields.DeleteOne(ctx, bson.M{"_id": oid, "ownerId": uid})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	_, _ = a.reports.DeleteMany(ctx, bson.M{"fieldId": oid.Hex(), "ownerId": uid})
	_ = json.NewEncoder(w).Encode(bson.M{"ok": true})
}

// injectRunState fills the transient status fields from the latest report.
func (a *App) injectRunState(ctx context.Context, f *models.Field) {
	rep, err := a.latestReport(ctx, f.ID.Hex(), f.OwnerID)
	if err != nil {
		f.Status = models.ReportStatusError
		return
	}
	if rep == nil {
		f.Status = models.ReportStatusProcessing
		return
	}

	f.Status = rep.Status
	f.LatestRun = rep.OperationID
}
