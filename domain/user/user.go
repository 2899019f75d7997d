package user

import (
	"time"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	Id           domain.UserId `json:"id" bson:"id"`
	Email        domain.Email  `json:"email" bson:"email"`
	Name         string        `json:"name" bson:"name"`
	Role         Role          `json:"role" bson:"role"`
	PasswordHash string        `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Id struct {
	Id domain.UserId `json:"id" bson:"id"`
}

type EmailSelector struct {
	Email domain.Email `json:"email" bson:"email"`
}

type Patchable struct {
	Name      *string    `json:"name" bson:"name,omitempty"`
	Role      *Role      `json:"role" bson:"role,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt" bson:"updatedAt,omitempty"`
}

type Repo interface {
	FindOne(c ctx.Ctx, id Id) (*User, error)
	FindOneByEmail(c ctx.Ctx, email domain.Email) (*User, error)
	Create(c ctx.Ctx, value *User) error
	Update(c ctx.Ctx, id Id, patchable Patchable) error
}

type SignupPayload struct {
	Email    domain.Email `json:"email" validate:"required,email"`
	Name     string       `json:"name" validate:"required"`
	Password string       `json:"password" validate:"required,min=8"`
}

type Usecase interface {
	Signup(c ctx.Ctx, payload SignupPayload) (*User, error)
	Get(c ctx.Ctx, id domain.UserId) (*User, error)
	GetByEmail(c ctx.Ctx, email domain.Email) (*User, error)
	Update(c ctx.Ctx, id domain.UserId, patchable Patchable) (*User, error)
}
