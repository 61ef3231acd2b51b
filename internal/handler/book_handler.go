package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/response"
	"github.com/tikulab/tiku-backend/internal/service"
)

// BookHandler handles wrong-answer book endpoints.
type BookHandler struct {
	bookService *service.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// ListBooks godoc
// GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if books == nil {
		books = []model.WrongAnswerBook{}
	}
	response.Success(c, http.StatusOK, gin.H{"books": books})
}

// GetBook godoc
// GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	book, err := h.bookService.GetByID(c.Request.Context(), id)
	if err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": book})
}

// DeleteBook godoc
// DELETE /api/v1/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), id); err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "错题本已删除"})
}
