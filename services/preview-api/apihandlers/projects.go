package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveyforge/surveyforge-backend/pkg/apihelpers"
	mw "github.com/surveyforge/surveyforge-backend/pkg/apihelpers/middlewares"
	projectDB "github.com/surveyforge/surveyforge-backend/pkg/db/project"
	"github.com/surveyforge/surveyforge-backend/pkg/survey/previewengine"
	surveyTypes "github.com/surveyforge/surveyforge-backend/pkg/survey/types"
	"github.com/surveyforge/surveyforge-backend/pkg/utils"
)

const (
	OVERRIDE_ACTION_PIN     = "pin"
	OVERRIDE_ACTION_EXCLUDE = "exclude"
	OVERRIDE_ACTION_RESET   = "reset"
)

var validOverrideActions = []string{
	OVERRIDE_ACTION_PIN,
	OVERRIDE_ACTION_EXCLUDE,
	OVERRIDE_ACTION_RESET,
}

func (h *HttpEndpoints) AddProjectsAPI(rg *gin.RouterGroup) {
	projectsGroup := rg.Group("/projects/:projectID")
	{
		projectsGroup.GET("/survey", h.getSurveyDoc)
		projectsGroup.PUT("/loi", mw.RequirePayload(), h.updateLOISlider)
		projectsGroup.PUT("/questions/:questionID/override", mw.RequirePayload(), h.updateQuestionOverride)

		projectsGroup.POST("/comments", mw.RequirePayload(), h.addComment)
		projectsGroup.GET("/comments", h.getComments)
	}
}

func (h *HttpEndpoints) getSurveyDoc(c *gin.Context) {
	projectID := c.Param("projectID")

	surveyDoc, err := h.projectDBConn.GetSurveyDoc(projectID)
	if err != nil {
		slog.Error("error loading survey document", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"survey": surveyDoc})
}

func (h *HttpEndpoints) updateLOISlider(c *gin.Context) {
	projectID := c.Param("projectID")

	var req struct {
		SliderPosition int  `json:"sliderPosition"`
		Snap           bool `json:"snap"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SliderPosition < 0 || req.SliderPosition > previewengine.LOI_POSITION_MAX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slider position out of range"})
		return
	}

	surveyDoc, err := h.projectDBConn.GetSurveyDoc(projectID)
	if err != nil {
		slog.Error("error loading survey document", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	position := req.SliderPosition
	if req.Snap {
		position = previewengine.SnapPosition(position)
	}

	calculator := previewengine.NewLOICalculator(surveyDoc)
	loiConfig := calculator.UpdateLOIConfig(position)

	if err := h.saveAndPropagate(projectID, surveyDoc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving survey document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"loiConfig": loiConfig})
}

func (h *HttpEndpoints) updateQuestionOverride(c *gin.Context) {
	projectID := c.Param("projectID")
	questionID := c.Param("questionID")

	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.ContainsString(validOverrideActions, req.Action) {
		slog.Error("invalid override action", slog.String("projectID", projectID), slog.String("action", req.Action))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid override action"})
		return
	}

	surveyDoc, err := h.projectDBConn.GetSurveyDoc(projectID)
	if err != nil {
		slog.Error("error loading survey document", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if surveyDoc.FindQuestion(questionID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}

	calculator := previewengine.NewLOICalculator(surveyDoc)

	var loiConfig *surveyTypes.LOIConfig
	switch req.Action {
	case OVERRIDE_ACTION_PIN:
		loiConfig = calculator.PinQuestion(questionID)
	case OVERRIDE_ACTION_EXCLUDE:
		loiConfig = calculator.ExcludeQuestion(questionID)
	case OVERRIDE_ACTION_RESET:
		loiConfig = calculator.ResetQuestionOverride(questionID)
	}

	if err := h.saveAndPropagate(projectID, surveyDoc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving survey document"})
		return
	}

	slog.Info("question override updated", slog.String("projectID", projectID), slog.String("questionID", questionID), slog.String("action", req.Action))

	c.JSON(http.StatusOK, gin.H{"loiConfig": loiConfig})
}

// saveAndPropagate persists the modified survey document and pushes it into
// every active preview session of the project.
func (h *HttpEndpoints) saveAndPropagate(projectID string, surveyDoc *surveyTypes.Survey) error {
	if err := h.projectDBConn.SaveSurveyDoc(projectID, surveyDoc); err != nil {
		slog.Error("error saving survey document", slog.String("projectID", projectID), slog.String("error", err.Error()))
		return err
	}

	for _, session := range h.sessions.SessionsForProject(projectID) {
		if err := session.ReplaceDocument(surveyDoc); err != nil {
			slog.Warn("could not update active preview session", slog.String("projectID", projectID), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (h *HttpEndpoints) addComment(c *gin.Context) {
	projectID := c.Param("projectID")

	var req struct {
		SessionID  string `json:"sessionID"`
		QuestionID string `json:"questionID"`
		Author     string `json:"author"`
		Text       string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	comment, err := h.projectDBConn.SaveComment(projectDB.PreviewComment{
		ProjectID:  projectID,
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		Author:     req.Author,
		Text:       req.Text,
	})
	if err != nil {
		slog.Error("error saving comment", slog.String("projectID", projectID), slog.String("error", err.Error()))
		// echo the text back so the client can keep what was typed
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving comment", "text": req.Text})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *HttpEndpoints) getComments(c *gin.Context) {
	projectID := c.Param("projectID")
	questionID := c.DefaultQuery("questionID", "")

	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		slog.Error("failed to parse query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, paginationInfo, err := h.projectDBConn.GetComments(projectID, questionID, query.Page, query.Limit)
	if err != nil {
		slog.Error("error fetching comments", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":   comments,
		"pagination": paginationInfo,
	})
}
