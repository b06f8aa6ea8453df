package main

import (
	"family-calendar-api/core/logger"
	"family-calendar-api/core/server"
)

// @title Family Calendar API
// @version 1.0
// @description Shared family calendar with recurring events, per-occurrence exceptions and scoped edits
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@familycalendar.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Server stopped", "error", err)
	}
}
