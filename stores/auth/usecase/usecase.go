package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
)

const tokenTTL = 24 * time.Hour

type impl struct {
	jwtSecret []byte
	user      user.Usecase
}

func New(jwtSecret string, user user.Usecase) domain.AuthUsecase {
	return &impl{
		jwtSecret: []byte(jwtSecret),
		user:      user,
	}
}

func (im *impl) SignToken(ctx ctx.Ctx, userId domain.UserId, email domain.Email, role string) (string, error) {
	claims := domain.JwtCustomClaims{
		UserId: userId,
		Email:  email,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (*domain.JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, domain.ErrInvalidCredential
}

func (im *impl) Login(ctx ctx.Ctx, email domain.Email, password string) (string, error) {
	u, err := im.user.GetByEmail(ctx, email)
	if err == domain.ErrNotFound {
		return "", domain.ErrInvalidCredential
	} else if err != nil {
		ctx.WithField("err", err).Error("user.GetByEmail failed")
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredential
	}

	return im.SignToken(ctx, u.Id, u.Email, string(u.Role))
}
