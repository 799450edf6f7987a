// Package store provides the search index layer for the chat-rag service.
//
// It defines the document index abstraction and its Milvus-backed
// implementation, supporting vector similarity search, keyword filtering
// and document lifecycle operations.
package store
