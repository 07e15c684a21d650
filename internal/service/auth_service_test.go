package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/pkg/config"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(nil, nil, AuthConfig{
		AccessTokenSecret: "test_secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "bus-tracker-api",
		DriverID:          "driver-001",
		DriverName:        "Michael Anderson",
		DriverPINHash:     string(hash),
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-001", PIN: "4321"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "driver-001", resp.DriverID)
	assert.Equal(t, "Michael Anderson", resp.DriverName)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestLoginWithShippedDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	svc := NewAuthService(nil, nil, AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		DriverID:          cfg.Driver.ID,
		DriverName:        cfg.Driver.Name,
		DriverPIN:         cfg.Driver.PIN,
		DriverPINHash:     cfg.Driver.PINHash,
	})

	// The default deployment must authenticate with the documented PIN.
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		DriverID: cfg.Driver.ID,
		PIN:      "0000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		DriverID: cfg.Driver.ID,
		PIN:      "1234",
	})
	require.Error(t, err)
}

func TestConfiguredHashTakesPrecedenceOverPIN(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("7777"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(nil, nil, AuthConfig{
		AccessTokenSecret: "test_secret",
		AccessTokenExpiry: time.Hour,
		DriverID:          "driver-001",
		DriverName:        "Michael Anderson",
		DriverPIN:         "0000",
		DriverPINHash:     string(hash),
	})

	_, err = svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-001", PIN: "0000"})
	require.Error(t, err, "plain PIN must not override a configured hash")

	_, err = svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-001", PIN: "7777"})
	require.NoError(t, err)
}

func TestLoginWrongPIN(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-001", PIN: "0000"})
	require.Error(t, err)
}

func TestLoginWrongDriverID(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-002", PIN: "4321"})
	require.Error(t, err)
}

func TestLoginMissingFields(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{})
	require.Error(t, err)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{DriverID: "driver-001", PIN: "4321"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "driver-001", claims.DriverID)
	assert.Equal(t, "Michael Anderson", claims.Name)
	assert.Equal(t, "bus-tracker-api", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthFixture(t)
	other := NewAuthService(nil, nil, AuthConfig{
		AccessTokenSecret: "different_secret",
		AccessTokenExpiry: time.Hour,
		DriverID:          "driver-001",
		DriverName:        "Michael Anderson",
	})

	token, _, err := other.generateAccessToken()
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
