package controllers

import (
	"errors"
	"strconv"

	"nwd/database"
	"nwd/middleware"
	"nwd/models"
	"nwd/services/actor"
	"nwd/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreatePerson creates a person. When an identity-provider account id is
// supplied, the profile is fetched from the provider and empty fields are
// filled in from it.
func CreatePerson(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPerson").(*struct {
		FirstName      string `json:"first_name"`
		LastNamePrefix string `json:"last_name_prefix"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		AuthUserID     string `json:"auth_user_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	person := models.Person{
		FirstName:      reqData.FirstName,
		LastNamePrefix: reqData.LastNamePrefix,
		LastName:       reqData.LastName,
		Email:          reqData.Email,
	}

	if reqData.AuthUserID != "" {
		profile, err := utils.GetProviderProfile(reqData.AuthUserID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to verify identity provider account!", nil)
		}
		person.AuthUserID = &profile.UserID
		if person.Email == "" {
			person.Email = profile.Email
		}
	}

	if err := database.Database.Db.Create(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "This identity provider account is already linked to a person!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create person!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Person created successfully!", person)
}

// LinkPersonToLocation creates or updates the link between a person and a
// location. Defaults to pending when no status is given.
func LinkPersonToLocation(c *fiber.Ctx) error {
	locationID, err := strconv.Atoi(c.Params("locationId"))
	if err != nil || locationID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid location ID!", nil)
	}

	reqData, ok := c.Locals("validatedLink").(*struct {
		PersonID uint   `json:"person_id"`
		Status   string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	status := reqData.Status
	if status == "" {
		status = models.LinkStatusPending
	}

	db := database.Database.Db

	var person models.Person
	if err := db.Where("id = ? AND is_deleted = false", reqData.PersonID).First(&person).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Person not found!", nil)
	}

	var link models.PersonLocationLink
	err = db.Where("person_id = ? AND location_id = ?", reqData.PersonID, locationID).First(&link).Error
	if err == gorm.ErrRecordNotFound {
		link = models.PersonLocationLink{
			PersonID:   reqData.PersonID,
			LocationID: uint(locationID),
			Status:     status,
		}
		if err := db.Create(&link).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link person!", nil)
		}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link person!", nil)
	} else if link.Status != status {
		if err := db.Model(&link).Update("status", status).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update link!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Person link updated successfully!", link)
}

// GetMe returns the authenticated person with their location links
func GetMe(c *fiber.Ctx) error {
	personID, ok := c.Locals("personId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var person models.Person
	if err := db.First(&person, personID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Person not found!", nil)
	}

	var links []models.PersonLocationLink
	db.Where("person_id = ?", personID).Preload("Location").Find(&links)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", fiber.Map{
		"person": person,
		"links":  links,
	})
}

// GetMyActiveTypes returns the distinct actor types the authenticated user
// holds across confirmed locations
func GetMyActiveTypes(c *fiber.Ctx) error {
	authUserID, ok := c.Locals("authUserId").(string)
	if !ok || authUserID == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	types, err := actor.ListActiveTypesForUser(database.Database.Db, authUserID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Active types fetched successfully!", types)
}
