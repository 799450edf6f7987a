// Package main is the entry point for the chat-rag ETL tool.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/JhonatanRC03/chat-rag/cmd/chat-rag-etl/app"
)

func main() {
	app.NewApp().Run()
}
