package project

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

var indexesForProjectsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "projectID", Value: 1},
		},
		Options: options.Index().SetName("projectID_1").SetUnique(true),
	},
	{
		Keys: bson.D{
			{Key: "updatedAt", Value: -1},
		},
		Options: options.Index().SetName("updatedAt_-1"),
	},
}

func (dbService *ProjectDBService) CreateIndexForProjectsCollection() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionProjects().Indexes().CreateMany(ctx, indexesForProjectsCollection)
	return err
}

func (dbService *ProjectDBService) CreateProject(project Project) (Project, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt

	ret, err := dbService.collectionProjects().InsertOne(ctx, project)
	if err != nil {
		return project, err
	}
	project.ID = ret.InsertedID.(primitive.ObjectID)
	return project, nil
}

func (dbService *ProjectDBService) GetProject(projectID string) (project Project, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"projectID": projectID}
	err = dbService.collectionProjects().FindOne(ctx, filter).Decode(&project)
	return project, err
}

func (dbService *ProjectDBService) GetProjects(page int64, limit int64) (projects []Project, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{}
	totalCount, err := dbService.collectionProjects().CountDocuments(ctx, filter)
	if err != nil {
		return projects, nil, err
	}

	paginationInfo = prepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find().
		SetSort(bson.D{primitive.E{Key: "updatedAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(paginationInfo.PageSize).
		SetProjection(bson.D{primitive.E{Key: "survey", Value: 0}})

	cursor, err := dbService.collectionProjects().Find(ctx, filter, opts)
	if err != nil {
		return projects, paginationInfo, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &projects)
	return projects, paginationInfo, err
}

func (dbService *ProjectDBService) GetSurveyDoc(projectID string) (*surveyTypes.Survey, error) {
	project, err := dbService.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.Survey == nil {
		return nil, errors.New("project has no survey document")
	}
	return project.Survey, nil
}

func (dbService *ProjectDBService) SaveSurveyDoc(projectID string, survey *surveyTypes.Survey) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"projectID": projectID}
	update := bson.M{"$set": bson.M{
		"survey":    survey,
		"updatedAt": time.Now(),
	}}

	res, err := dbService.collectionProjects().UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("project not found")
	}
	return nil
}

func (dbService *ProjectDBService) DeleteProject(projectID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"projectID": projectID}
	res, err := dbService.collectionProjects().DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("no item was deleted")
	}
	return nil
}
