package services

import (
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"gorm.io/gorm"
)

// AuthService authenticates operators of the admin HTTP API.
type AuthService struct {
	operators *repositories.OperatorRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{operators: repositories.NewOperatorRepository(db)}
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login verifies the operator's credentials and issues a token pair.
func (s *AuthService) Login(email, password string) (TokenPair, error) {
	op, err := s.operators.FindByEmail(email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !auth.CheckPassword(op.Password, password) {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, err := auth.GenerateToken(op.ID, op.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(op.ID, op.Role)
	if err != nil {
		return TokenPair{}, err
	}

	logger.Info("auth: operator login", "operator_id", op.ID, "email", email)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := auth.ValidateToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, err := auth.GenerateToken(claims.UserID, claims.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(claims.UserID, claims.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// CreateOperator registers a new admin account with a hashed password.
func (s *AuthService) CreateOperator(email, password, role string) (models.Operator, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Operator{}, err
	}
	op := models.Operator{Email: email, Password: hash, Role: role}
	if err := s.operators.Create(&op); err != nil {
		return models.Operator{}, err
	}
	return op, nil
}
