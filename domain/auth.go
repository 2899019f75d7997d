package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/deserthomes/goapi/base/ctx"
)

type JwtCustomClaims struct {
	UserId UserId `json:"userId"`
	Email  Email  `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, userId UserId, email Email, role string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (*JwtCustomClaims, error)
	Login(ctx ctx.Ctx, email Email, password string) (token string, err error)
}
