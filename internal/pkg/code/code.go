// Package code defines the error codes for the chat-rag service.
package code

import (
	"github.com/JhonatanRC03/chat-rag/pkg/utils/errors"
)

// ServiceChatRAG is the service code for the chat-rag backend.
const ServiceChatRAG = 10

func init() {
	errors.RegisterService(ServiceChatRAG, "chat-rag")
}

// Request errors.
var (
	// ErrFileRequired indicates the multipart file field is missing.
	ErrFileRequired = errors.NewRequestErr(ServiceChatRAG, 1,
		"File is required", "")

	// ErrEmptyFile indicates the uploaded file has no content.
	ErrEmptyFile = errors.NewRequestErr(ServiceChatRAG, 2,
		"Uploaded file is empty", "")

	// ErrUnsupportedFileType indicates the uploaded file is not a PDF.
	ErrUnsupportedFileType = errors.NewRequestErr(ServiceChatRAG, 3,
		"Only PDF files are supported", "")

	// ErrMessageRequired indicates the chat message is missing.
	ErrMessageRequired = errors.NewRequestErr(ServiceChatRAG, 4,
		"Message is required", "")

	// ErrQueryRequired indicates the search query is missing.
	ErrQueryRequired = errors.NewRequestErr(ServiceChatRAG, 5,
		"Query is required", "")
)

// Resource errors.
var (
	// ErrDocumentNotFound indicates the document does not exist.
	ErrDocumentNotFound = errors.NewNotFoundErr(ServiceChatRAG, 1,
		"Document not found", "")
)

// Internal errors.
var (
	// ErrProcessFailed indicates the document ingest pipeline failed.
	ErrProcessFailed = errors.NewInternalErr(ServiceChatRAG, 1,
		"Document processing failed", "")

	// ErrSearchFailed indicates document retrieval failed.
	ErrSearchFailed = errors.NewInternalErr(ServiceChatRAG, 2,
		"Document search failed", "")

	// ErrChatFailed indicates answer generation failed.
	ErrChatFailed = errors.NewInternalErr(ServiceChatRAG, 3,
		"Chat generation failed", "")

	// ErrListFailed indicates document listing failed.
	ErrListFailed = errors.NewInternalErr(ServiceChatRAG, 4,
		"Document listing failed", "")

	// ErrDeleteFailed indicates document deletion failed.
	ErrDeleteFailed = errors.NewInternalErr(ServiceChatRAG, 5,
		"Document deletion failed", "")
)
