package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
)

// Claims carried by a scheduler access token.
type Claims struct {
	Actor model.Actor
	Email string
}

type JWTService interface {
	GenerateToken(actor model.Actor, email string) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) JWTService {
	return &jwtService{secret: []byte(secret), expiry: expiry}
}

func (s *jwtService) GenerateToken(actor model.Actor, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   actor.ID.String(),
		"role":  string(actor.Role),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role claim %q", roleStr)
	}

	email, _ := claims["email"].(string)

	return &Claims{
		Actor: model.Actor{ID: id, Role: role},
		Email: email,
	}, nil
}
