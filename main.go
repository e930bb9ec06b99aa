package main

import (
	"log"

	"nwd/config"
	"nwd/database"
	catalogRoutes "nwd/routers/catalogRoutes"
	cohortRoutes "nwd/routers/cohortRoutes"
	locationRoutes "nwd/routers/locationRoutes"
	personRoutes "nwd/routers/personRoutes"
	pvbRoutes "nwd/routers/pvbRoutes"
	"nwd/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	catalogRoutes.SetupCatalogRoutes(app)
	locationRoutes.SetupLocationRoutes(app)
	cohortRoutes.SetupCohortRoutes(app)
	pvbRoutes.SetupPvbRoutes(app)
	personRoutes.SetupPersonRoutes(app)

	// Hourly job that emails students whose certificate became visible
	utils.StartCertificateScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
