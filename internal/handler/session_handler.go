package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/response"
	"github.com/tikulab/tiku-backend/internal/service"
	"github.com/tikulab/tiku-backend/internal/validator"
)

// SessionHandler handles exam session endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// RecordAnswerRequest is the payload for recording an answer. The
// answer is a string for single/judge questions and an array of strings
// for multiple-choice.
type RecordAnswerRequest struct {
	QuestionID string       `json:"question_id" binding:"required"`
	Answer     model.Answer `json:"answer"`
}

// NavigateRequest is the payload for moving the current position.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// StartBankSession godoc
// POST /api/v1/banks/:id/sessions
// Starts a timed exam over a bank, restoring a recoverable snapshot of
// an interrupted attempt when one exists.
func (h *SessionHandler) StartBankSession(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.StartBankExam(c.Request.Context(), bankID)
	if err != nil {
		failSessionStart(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// StartPracticeSession godoc
// POST /api/v1/books/:id/sessions
// Starts a wrong-answer practice run over a book.
func (h *SessionHandler) StartPracticeSession(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.StartPractice(c.Request.Context(), bookID)
	if err != nil {
		failSessionStart(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/sessions/:id
// Returns the full session state so a reloaded client can rehydrate.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.State(id)
	if err != nil {
		failSessionOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// RecordAnswer godoc
// PUT /api/v1/sessions/:id/answers
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.RecordAnswer(id, req.QuestionID, req.Answer); err != nil {
		failSessionOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Navigate godoc
// PUT /api/v1/sessions/:id/position
func (h *SessionHandler) Navigate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Navigate(id, *req.Index); err != nil {
		failSessionOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"index": *req.Index})
}

// TogglePause godoc
// POST /api/v1/sessions/:id/pause
func (h *SessionHandler) TogglePause(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.TogglePause(id)
	if err != nil {
		failSessionOp(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
// Grades the session and returns the history record id for the results
// view. Safe to retry: a submitted session returns the same id.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	historyID, err := h.sessionService.Submit(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrSubmitFailed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history_id": historyID})
}

func failSessionStart(c *gin.Context, err error) {
	if errors.Is(err, exam.ErrNoQuestions) {
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
		return
	}
	failLookup(c, err)
}

func failSessionOp(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, exam.ErrSessionSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, exam.ErrQuestionNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionUnknown)
	case errors.Is(err, exam.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
