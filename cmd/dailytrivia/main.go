package main

import (
	"dailytrivia/cmd/handlers"
	"dailytrivia/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
