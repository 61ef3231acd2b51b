package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
	"github.com/tikulab/tiku-backend/internal/response"
	"github.com/tikulab/tiku-backend/internal/service"
	"github.com/tikulab/tiku-backend/internal/validator"
	"github.com/tikulab/tiku-backend/internal/xlsx"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BankHandler handles question bank endpoints, including the
// spreadsheet import/export surface.
type BankHandler struct {
	bankService *service.BankService
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService *service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// ListBanks godoc
// GET /api/v1/banks
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.bankService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if banks == nil {
		banks = []model.QuestionBank{}
	}
	response.Success(c, http.StatusOK, gin.H{"banks": banks})
}

// GetBank godoc
// GET /api/v1/banks/:id
func (h *BankHandler) GetBank(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.bankService.GetByID(c.Request.Context(), id)
	if err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bank": bank})
}

// CreateBank godoc
// POST /api/v1/banks
func (h *BankHandler) CreateBank(c *gin.Context) {
	var req model.SaveQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerShape) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"bank": bank})
}

// UpdateBank godoc
// PUT /api/v1/banks/:id
func (h *BankHandler) UpdateBank(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerShape) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bank": bank})
}

// DeleteBank godoc
// DELETE /api/v1/banks/:id
func (h *BankHandler) DeleteBank(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.bankService.Delete(c.Request.Context(), id); err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "题库已删除"})
}

// ImportQuestions godoc
// POST /api/v1/banks/import
// Parses an uploaded workbook into a question list for the bank form.
// Nothing is persisted; a malformed file commits no partial list.
func (h *BankHandler) ImportQuestions(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	questions, err := xlsx.Parse(file)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrImportFailed,
			map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

// ExportBank godoc
// GET /api/v1/banks/:id/export
// Streams the bank's questions as a workbook download.
func (h *BankHandler) ExportBank(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bank, err := h.bankService.GetByID(c.Request.Context(), id)
	if err != nil {
		failLookup(c, err)
		return
	}

	f, err := xlsx.Export(bank)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	writeWorkbook(c, f, bank.Name+".xlsx")
}

// DownloadTemplate godoc
// GET /api/v1/banks/template
// Streams the sample import workbook.
func (h *BankHandler) DownloadTemplate(c *gin.Context) {
	f, err := xlsx.Template()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	writeWorkbook(c, f, "题库导入模板.xlsx")
}

// writeWorkbook streams a workbook as an attachment. The filename is
// percent-encoded for non-ASCII names per RFC 5987.
func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	_ = f.Write(c.Writer)
}

// failLookup maps repository lookup errors onto API responses.
func failLookup(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
