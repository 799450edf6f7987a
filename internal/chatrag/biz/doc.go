// Package biz implements the business logic of the chat-rag service:
// document ingest (upload, analyze, embed, index) and retrieval-augmented
// chat over the indexed documents.
package biz
