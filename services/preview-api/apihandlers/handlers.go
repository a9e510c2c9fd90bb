package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	projectDB "github.com/surveyforge/surveyforge-backend/pkg/db/project"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	projectDBConn *projectDB.ProjectDBService
	sessions      *SessionStore
}

func NewHTTPHandler(
	projectDBConn *projectDB.ProjectDBService,
	sessions *SessionStore,
) *HttpEndpoints {
	return &HttpEndpoints{
		projectDBConn: projectDBConn,
		sessions:      sessions,
	}
}
