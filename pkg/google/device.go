package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/typeform-survey/survey-client/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const deviceAuthURL = "https://oauth2.googleapis.com/device/code"

// ErrNoIDToken is returned when Google grants access without an OpenID token
var ErrNoIDToken = errors.New("google did not return an id_token")

// Prompt shows the user where to approve the sign-in
type Prompt func(verificationURL, userCode string)

// DeviceFlow obtains a Google ID token through the OAuth device authorization grant
type DeviceFlow struct {
	config *oauth2.Config
}

// NewDeviceFlow creates a device flow for the given OAuth client
func NewDeviceFlow(clientID, clientSecret string) *DeviceFlow {
	endpoint := endpoints.Google
	if endpoint.DeviceAuthURL == "" {
		endpoint.DeviceAuthURL = deviceAuthURL
	}
	return newDeviceFlow(clientID, clientSecret, endpoint)
}

func newDeviceFlow(clientID, clientSecret string, endpoint oauth2.Endpoint) *DeviceFlow {
	return &DeviceFlow{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
	}
}

// Credential runs the device flow and returns the ID token to exchange with the backend.
// It blocks until the user approves, the code expires, or ctx is cancelled.
func (d *DeviceFlow) Credential(ctx context.Context, prompt Prompt) (string, error) {
	auth, err := d.config.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to start google device authorization: %w", err)
	}

	url := auth.VerificationURIComplete
	if url == "" {
		url = auth.VerificationURI
	}
	prompt(url, auth.UserCode)

	token, err := d.config.DeviceAccessToken(ctx, auth)
	if err != nil {
		return "", fmt.Errorf("google device authorization failed: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", ErrNoIDToken
	}

	logger.Debug("Google device authorization completed", zap.Time("access_expiry", token.Expiry))
	return idToken, nil
}
