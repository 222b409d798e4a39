package service

import (
	"context"

	"go.uber.org/zap"

	"retail-api/internal/apperr"
	"retail-api/internal/auth"
	"retail-api/internal/models"
	"retail-api/internal/store"
	"retail-api/internal/util"
)

// AuthService handles registration, login and token refresh
type AuthService struct {
	store  *store.Store
	tokens *auth.Service
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, tokens *auth.Service) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest represents a request to register a user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user after checking username/email uniqueness
// among non-deleted users. The password is stored only as a hash.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.InvalidRequest("Informação obrigatória para cadastro não informada.")
	}

	exists, err := s.store.UserExists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Usuário com essas informações já cadastrado!")
	}

	hash, err := s.tokens.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Senha:    hash,
		Email:    req.Email,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	util.RegistrationsTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues an access token. An unknown
// username is NotFound; a wrong password is InvalidRequest, matching
// the API's historical status codes.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperr.InvalidRequest("Informação obrigatória para login não informada.")
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		util.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
		return nil, err
	}

	if !s.tokens.VerifyPassword(req.Password, user.Senha) {
		util.AuthFailuresTotal.WithLabelValues("wrong_password").Inc()
		return nil, apperr.InvalidRequest("Senha inserida está incorreta!")
	}

	token, err := s.tokens.IssueToken(user.Username)
	if err != nil {
		return nil, err
	}

	util.TokensIssuedTotal.Inc()
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Refresh validates the presented token and issues a fresh one for the
// same subject.
func (s *AuthService) Refresh(ctx context.Context, tokenString string) (*TokenResponse, error) {
	subject, err := s.tokens.VerifyToken(tokenString)
	if err != nil {
		util.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		return nil, err
	}

	// The subject must still resolve to an active user.
	if _, err := s.store.GetUserByUsername(ctx, subject); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("Token inválido ou expirado!")
		}
		return nil, err
	}

	token, err := s.tokens.IssueToken(subject)
	if err != nil {
		return nil, err
	}

	util.TokensIssuedTotal.Inc()
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}
