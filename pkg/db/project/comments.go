package project

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var indexesForPreviewCommentsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "projectID", Value: 1},
			{Key: "questionID", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("projectID_questionID_createdAt_1"),
	},
	{
		Keys: bson.D{
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("createdAt_1"),
	},
}

func (dbService *ProjectDBService) CreateIndexForPreviewCommentsCollection() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionPreviewComments().Indexes().CreateMany(ctx, indexesForPreviewCommentsCollection)
	return err
}

func (dbService *ProjectDBService) SaveComment(comment PreviewComment) (PreviewComment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	ret, err := dbService.collectionPreviewComments().InsertOne(ctx, comment)
	if err != nil {
		return comment, err
	}
	comment.ID = ret.InsertedID.(primitive.ObjectID)
	return comment, nil
}

func (dbService *ProjectDBService) GetComments(projectID string, questionID string, page int64, limit int64) (comments []PreviewComment, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"projectID": projectID}
	if questionID != "" {
		filter["questionID"] = questionID
	}

	totalCount, err := dbService.collectionPreviewComments().CountDocuments(ctx, filter)
	if err != nil {
		return comments, nil, err
	}

	paginationInfo = prepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find().
		SetSort(bson.D{primitive.E{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(paginationInfo.PageSize)

	cursor, err := dbService.collectionPreviewComments().Find(ctx, filter, opts)
	if err != nil {
		return comments, paginationInfo, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &comments)
	return comments, paginationInfo, err
}

func (dbService *ProjectDBService) DeleteCommentsOlderThan(olderThan time.Time) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"createdAt": bson.M{"$lt": olderThan}}
	res, err := dbService.collectionPreviewComments().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
