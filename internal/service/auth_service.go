package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/bus-tracker-api/internal/models"
	appErrors "github.com/noah-isme/bus-tracker-api/pkg/errors"
)

// AuthConfig defines configuration for the single-driver login flow.
// DriverPINHash takes precedence; when empty, DriverPIN is bcrypt-hashed at
// construction so a default deployment still authenticates.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	DriverID          string
	DriverName        string
	DriverPIN         string
	DriverPINHash     string
}

// AuthService authenticates the configured driver and validates access
// tokens. There is exactly one account per running instance (single bus,
// single driver), so credentials come from config rather than a user table.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DriverPINHash == "" && config.DriverPIN != "" {
		if hash, err := bcrypt.GenerateFromPassword([]byte(config.DriverPIN), bcrypt.DefaultCost); err == nil {
			config.DriverPINHash = string(hash)
		} else {
			logger.Error("failed to hash driver pin, login disabled", zap.Error(err))
		}
	}
	return &AuthService{validator: validate, logger: logger, config: config}
}

// Login verifies the driver id and PIN and returns an issued access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if req.DriverID != s.config.DriverID {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.DriverPINHash), []byte(req.PIN)); err != nil {
		s.logger.Warn("login rejected", zap.String("driver_id", req.DriverID))
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateAccessToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	s.logger.Info("driver logged in", zap.String("driver_id", s.config.DriverID))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		DriverID:    s.config.DriverID,
		DriverName:  s.config.DriverName,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken() (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		DriverID: s.config.DriverID,
		Name:     s.config.DriverName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   s.config.DriverID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
