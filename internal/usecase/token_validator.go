package usecase

import (
	"tutor-booking/internal/pkg/errs"
	"tutor-booking/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrUnknownRole = errs.New("unknown role")

// TokenValidator resolves a bearer token to the caller and its role.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, jwt.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, jwt.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	if role := jwt.Role(claims.Role); role.Valid() {
		return claims.UserID, role, nil
	}
	return uuid.Nil, "", errs.Wrapf(ErrUnknownRole, "role %q", claims.Role)
}
