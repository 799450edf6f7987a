package handler

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/biz"
	"github.com/JhonatanRC03/chat-rag/internal/pkg/code"
	"github.com/JhonatanRC03/chat-rag/internal/pkg/httputils"
)

// UploadAndProcess handles POST /v1/documents/upload-and-process.
// It accepts a multipart PDF upload and runs the full ingest pipeline.
func (h *Handler) UploadAndProcess(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputils.WriteResponse(c, code.ErrFileRequired, nil)
		return
	}

	if !isPDF(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		httputils.WriteResponse(c, code.ErrUnsupportedFileType, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputils.WriteResponse(c, code.ErrProcessFailed.WithCause(err), nil)
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		httputils.WriteResponse(c, code.ErrProcessFailed.WithCause(err), nil)
		return
	}
	if len(content) == 0 {
		httputils.WriteResponse(c, code.ErrEmptyFile, nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), processTimeout)
	defer cancel()

	result, err := h.processor.ProcessDocument(ctx, fileHeader.Filename, contentTypeOrPDF(fileHeader.Header.Get("Content-Type")), content)
	if err != nil {
		logger.Errorw("document processing failed",
			"filename", fileHeader.Filename,
			"error", err.Error(),
		)
		httputils.WriteResponse(c, code.ErrProcessFailed.WithCause(err), nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}

// ListDocuments handles GET /v1/documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	objects, err := h.processor.ListDocuments(ctx)
	if err != nil {
		httputils.WriteResponse(c, code.ErrListFailed.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{
		"documents": objects,
		"count":     len(objects),
	})
}

// GetDocument handles GET /v1/documents/:id.
func (h *Handler) GetDocument(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	doc, err := h.processor.GetDocument(ctx, c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, code.ErrSearchFailed.WithCause(err), nil)
		return
	}
	if doc == nil {
		httputils.WriteResponse(c, code.ErrDocumentNotFound, nil)
		return
	}
	httputils.WriteResponse(c, nil, doc)
}

// DeleteDocument handles DELETE /v1/documents/:id.
func (h *Handler) DeleteDocument(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	id := c.Param("id")
	if err := h.processor.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, biz.ErrDocumentNotFound) {
			httputils.WriteResponse(c, code.ErrDocumentNotFound, nil)
			return
		}
		httputils.WriteResponse(c, code.ErrDeleteFailed.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"deleted": id})
}

// searchRequest is the body of POST /v1/documents/search.
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchDocuments handles POST /v1/documents/search with hybrid retrieval.
func (h *Handler) SearchDocuments(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		httputils.WriteResponse(c, code.ErrQueryRequired, nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.chat.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		httputils.WriteResponse(c, code.ErrSearchFailed.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return strings.EqualFold(contentType, "application/pdf")
}

func contentTypeOrPDF(contentType string) string {
	if contentType == "" {
		return "application/pdf"
	}
	return contentType
}
