package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/surveyforge/surveyforge-backend/pkg/apihelpers/middlewares"
	"github.com/surveyforge/surveyforge-backend/pkg/survey/previewengine"
	"github.com/surveyforge/surveyforge-backend/pkg/utils"
)

var validSessionModes = []string{
	previewengine.SESSION_MODE_TEST,
	previewengine.SESSION_MODE_PRODUCTION,
}

func (h *HttpEndpoints) AddPreviewSessionsAPI(rg *gin.RouterGroup) {
	projectsGroup := rg.Group("/projects/:projectID")
	{
		projectsGroup.POST("/preview-sessions", mw.RequirePayload(), h.startPreviewSession)
	}

	sessionsGroup := rg.Group("/preview-sessions/:sessionID")
	{
		sessionsGroup.GET("/current", h.getCurrentQuestion)
		sessionsGroup.GET("/state", h.getSessionState)
		sessionsGroup.POST("/answers", mw.RequirePayload(), h.submitAnswer)
		sessionsGroup.POST("/next", h.goToNextQuestion)
		sessionsGroup.POST("/back", h.goToPreviousQuestion)
		sessionsGroup.POST("/cell", mw.RequirePayload(), h.assignCell)
		sessionsGroup.DELETE("", h.endPreviewSession)
	}
}

func (h *HttpEndpoints) startPreviewSession(c *gin.Context) {
	projectID := c.Param("projectID")

	var req struct {
		Mode           string `json:"mode"`
		CellAssignment string `json:"cellAssignment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Mode == "" {
		req.Mode = previewengine.SESSION_MODE_TEST
	}
	if !utils.ContainsString(validSessionModes, req.Mode) {
		slog.Error("invalid session mode", slog.String("projectID", projectID), slog.String("mode", req.Mode))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session mode"})
		return
	}

	surveyDoc, err := h.projectDBConn.GetSurveyDoc(projectID)
	if err != nil {
		slog.Error("error loading survey document", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	session, err := previewengine.NewPreviewSession(surveyDoc, req.Mode)
	if err != nil {
		slog.Error("error starting preview session", slog.String("projectID", projectID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.CellAssignment != "" {
		session.SetCellAssignment(req.CellAssignment)
	}

	sessionID := h.sessions.Add(projectID, session)

	slog.Info("preview session started", slog.String("projectID", projectID), slog.String("sessionID", sessionID), slog.String("mode", req.Mode))

	c.JSON(http.StatusCreated, gin.H{
		"sessionID": sessionID,
		"mode":      session.Mode(),
		"progress":  session.Progress(),
		"current":   currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) getCurrentQuestion(c *gin.Context) {
	session, _, err := h.sessions.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": session.Progress(),
		"current":  currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) getSessionState(c *gin.Context) {
	session, projectID, err := h.sessions.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projectID": projectID,
		"mode":      session.Mode(),
		"progress":  session.Progress(),
		"statuses":  session.Statuses(),
		"answers":   session.Answers(),
		"current":   currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) submitAnswer(c *gin.Context) {
	sessionID := c.Param("sessionID")
	session, _, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		QuestionID string      `json:"questionID"`
		Answer     interface{} `json:"answer"`
		RowIndex   *int        `json:"rowIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.QuestionID == "" {
		current := session.CurrentQuestion()
		if current == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no current question to answer"})
			return
		}
		req.QuestionID = current.QuestionID
	}

	var termination *previewengine.TerminationInfo
	if req.RowIndex != nil {
		termination, err = session.AnswerMatrixRow(req.QuestionID, *req.RowIndex, req.Answer)
	} else {
		termination, err = session.Answer(req.QuestionID, req.Answer)
	}
	if err != nil {
		slog.Error("error recording answer", slog.String("sessionID", sessionID), slog.String("questionID", req.QuestionID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"progress":   session.Progress(),
		"canProceed": session.CanProceed(),
		"current":    currentQuestionPayload(session),
	}
	if termination != nil {
		resp["termination"] = termination
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HttpEndpoints) goToNextQuestion(c *gin.Context) {
	sessionID := c.Param("sessionID")
	session, _, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if err := session.Next(); err != nil {
		slog.Debug("cannot advance preview session", slog.String("sessionID", sessionID), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": session.Progress(),
		"current":  currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) goToPreviousQuestion(c *gin.Context) {
	session, _, err := h.sessions.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	session.Back()

	c.JSON(http.StatusOK, gin.H{
		"progress": session.Progress(),
		"current":  currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) assignCell(c *gin.Context) {
	sessionID := c.Param("sessionID")
	session, _, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Cell string `json:"cell"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session.SetCellAssignment(req.Cell)

	slog.Debug("cell assignment updated", slog.String("sessionID", sessionID), slog.String("cell", req.Cell))

	c.JSON(http.StatusOK, gin.H{
		"progress": session.Progress(),
		"current":  currentQuestionPayload(session),
	})
}

func (h *HttpEndpoints) endPreviewSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if _, _, err := h.sessions.Get(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.sessions.Remove(sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "session ended"})
}

func currentQuestionPayload(session *previewengine.PreviewSession) gin.H {
	question := session.CurrentQuestion()
	if question == nil {
		return nil
	}

	payload := gin.H{
		"questionID": question.QuestionID,
		"type":       question.QuestionType,
		"text":       session.CurrentQuestionText(),
		"required":   question.Required,
	}
	if len(question.Options) > 0 {
		payload["options"] = question.Options
	}
	if question.IsMatrix() {
		payload["rows"] = question.Rows
		payload["columns"] = question.Columns
		payload["rowIndex"] = session.MatrixRowIndex(question.QuestionID)
	}
	if question.DisplaysArtefact != "" {
		payload["displaysArtefact"] = question.DisplaysArtefact
		if artefact := session.CurrentArtefact(); artefact != nil {
			payload["artefact"] = artefact
		}
	}
	return payload
}
