package main

import (
	"os"

	"court-reservation-api/core/logger"
	"court-reservation-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Main:Run:Failed", "error", err)
		os.Exit(1)
	}
}
