package utils

import (
	"fmt"
	"time"

	"nwd/config"

	"github.com/go-resty/resty/v2"
)

// ProviderProfile is the profile the identity provider returns for an
// account
type ProviderProfile struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GetProviderProfile fetches the profile of an identity-provider account.
// Used when linking a person to their auth account; regular request
// authentication never calls the provider.
func GetProviderProfile(authUserID string) (*ProviderProfile, error) {
	client := resty.New().
		SetBaseURL(config.AppConfig.AuthProviderURL).
		SetTimeout(10 * time.Second).
		SetHeader("Authorization", "Bearer "+config.AppConfig.AuthServiceKey)

	var profile ProviderProfile
	resp, err := client.R().
		SetResult(&profile).
		SetPathParam("userId", authUserID).
		Get("/api/v1/users/{userId}")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode())
	}
	return &profile, nil
}
