package controllers

import (
	"strconv"

	"nwd/database"
	"nwd/middleware"
	"nwd/services/actor"

	"github.com/gofiber/fiber/v2"
)

// UpsertActor adds an actor to a location, or reactivates a removed one
func UpsertActor(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	reqData, ok := c.Locals("validatedActor").(*struct {
		PersonID uint   `json:"person_id"`
		Type     string `json:"type"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	actorID, err := actor.Upsert(database.Database.Db, actor.UpsertInput{
		LocationID: uint(locationID),
		PersonID:   reqData.PersonID,
		Type:       reqData.Type,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Actor added successfully!", fiber.Map{
		"actor_id": actorID,
	})
}

// RemoveActor removes an actor from a location. Removing an actor that is
// already gone is a no-op.
func RemoveActor(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	reqData, ok := c.Locals("validatedActor").(*struct {
		PersonID uint   `json:"person_id"`
		Type     string `json:"type"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err = actor.Remove(database.Database.Db, actor.UpsertInput{
		LocationID: uint(locationID),
		PersonID:   reqData.PersonID,
		Type:       reqData.Type,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Actor removed successfully!", nil)
}

// ListLocationActors lists the active actors of a location
func ListLocationActors(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	actors, err := actor.ListForLocation(database.Database.Db, uint(locationID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Actors fetched successfully!", actors)
}
