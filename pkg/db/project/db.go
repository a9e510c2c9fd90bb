package project

import (
	"context"
	"log/slog"
	"time"

	"github.com/surveyforge/surveyforge-backend/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_PROJECTS         = "projects"
	COLLECTION_NAME_PREVIEW_COMMENTS = "preview-comments"
)

type ProjectDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
}

func NewProjectDBService(configs db.DBConfig) (*ProjectDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	projectDBSc := &ProjectDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		if err := projectDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for project DB", slog.String("error", err.Error()))
		}
	}

	return projectDBSc, nil
}

func (dbService *ProjectDBService) getDBName() string {
	return dbService.DBNamePrefix + "surveyforgeDB"
}

func (dbService *ProjectDBService) collectionProjects() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_PROJECTS)
}

func (dbService *ProjectDBService) collectionPreviewComments() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_PREVIEW_COMMENTS)
}

func (dbService *ProjectDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *ProjectDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for project DB")

	err := dbService.CreateIndexForProjectsCollection()
	if err != nil {
		slog.Error("Error creating index for projects", slog.String("error", err.Error()))
	}

	err = dbService.CreateIndexForPreviewCommentsCollection()
	if err != nil {
		slog.Error("Error creating index for preview comments", slog.String("error", err.Error()))
	}

	return nil
}
