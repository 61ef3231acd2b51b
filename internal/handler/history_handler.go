package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/response"
	"github.com/tikulab/tiku-backend/internal/service"
)

// HistoryHandler handles exam history endpoints.
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListHistory godoc
// GET /api/v1/history
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	records, err := h.historyService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if records == nil {
		records = []model.ExamHistory{}
	}
	response.Success(c, http.StatusOK, gin.H{"history": records})
}

// GetHistory godoc
// GET /api/v1/history/:id
// Returns one graded record for the results view.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rec, err := h.historyService.GetByID(c.Request.Context(), id)
	if err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// DeleteHistory godoc
// DELETE /api/v1/history/:id
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), id); err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "考试记录已删除"})
}
