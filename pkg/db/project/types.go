package project

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
)

type Project struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID string              `bson:"projectID" json:"projectID"`
	Name      string              `bson:"name" json:"name"`
	Survey    *surveyTypes.Survey `bson:"survey" json:"survey"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type PreviewComment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID  string             `bson:"projectID" json:"projectID"`
	SessionID  string             `bson:"sessionID" json:"sessionID"`
	QuestionID string             `bson:"questionID" json:"questionID"`
	Author     string             `bson:"author" json:"author"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type PaginationInfos struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	PageSize    int64 `json:"pageSize"`
}
