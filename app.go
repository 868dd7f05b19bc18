package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chloriseye/aoi"
	"chloriseye/pipeline"
	"chloriseye/scenes"
)

type App struct {
	cfg     Config
	mongo   *mongo.Client
	db      *mongo.Database
	users   *mongo.Collection
	fields  *mongo.Collection
	reports *mongo.Collection

	archive *scenes.Client
	areas   *aoi.Resolver
	pipe    *pipeline.Pipeline
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)

	pipe, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:     cfg,
		mongo:   client,
		db:      db,
		users:   db.Collection("users"),
		fields:  db.Collection("fields"),
		reports: db.Collection("reports"),
		archive: scenes.NewClient(cfg.ArchiveURI),
		areas:   aoi.NewResolver(cfg.OverpassURI, 30*time.Second),
		pipe:    pipe,
	}
	// Indexes
	if _, err := app.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if _, err := app.fields.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return nil, err
	}
	if _, err := app.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "operation_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if _, err := app.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "fieldId", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) close(ctx context.Context) { _ = a.mongo.Disconnect(ctx) }
