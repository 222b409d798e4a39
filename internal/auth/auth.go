package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"retail-api/config"
	"retail-api/internal/apperr"
)

// Service hashes credentials and issues/validates access tokens. It is
// stateless apart from the secret and TTL injected at construction.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(cfg config.AuthConfig) *Service {
	return &Service{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.AccessTokenTTL,
	}
}

// HashPassword returns the bcrypt hash of a plain password.
func (s *Service) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func (s *Service) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken signs an access token for subject with the configured TTL.
func (s *Service) IssueToken(subject string) (string, error) {
	return s.IssueTokenTTL(subject, s.ttl)
}

// IssueTokenTTL signs an access token for subject with an explicit TTL.
func (s *Service) IssueTokenTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates signature and expiry and returns the subject.
// Any failure surfaces as Unauthorized.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperr.Unauthorized("Token com algoritmo de assinatura inválido!")
			}
			return s.secret, nil
		})
	if err != nil {
		return "", apperr.Unauthorized("Token inválido ou expirado!").WithCause(err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", apperr.Unauthorized("Token inválido ou expirado!")
	}
	if claims.Subject == "" {
		return "", apperr.Unauthorized("Token sem identificação de usuário!")
	}

	return claims.Subject, nil
}
