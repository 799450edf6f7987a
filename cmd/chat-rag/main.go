// Package main is the entry point for the chat-rag server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/JhonatanRC03/chat-rag/cmd/chat-rag/app"
)

func main() {
	app.NewApp().Run()
}
