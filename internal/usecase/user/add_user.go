package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/validators"
)

type Store interface {
	FindUser(ctx context.Context, userName string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SetCoupons(ctx context.Context, userName string, coupons int) error
}

type AddUserInput struct {
	UserName string
	Password string
	Role     string
	Coupons  int
}

type AddUser struct {
	store Store
	cost  int
}

func NewAddUser(store Store) *AddUser {
	return &AddUser{
		store: store,
		cost:  bcrypt.DefaultCost,
	}
}

func (uc *AddUser) Execute(ctx context.Context, in AddUserInput) (*models.User, error) {
	if !validators.IsUserNameValid(in.UserName) {
		return nil, ErrInvalidUserName
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if in.Coupons < 0 {
		return nil, ErrNegativeCoupons
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		UserName:     in.UserName,
		PasswordHash: string(hashed),
		Role:         role,
		Coupons:      in.Coupons,
	}
	if err := uc.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type SetCoupons struct {
	store Store
}

func NewSetCoupons(store Store) *SetCoupons {
	return &SetCoupons{store: store}
}

func (uc *SetCoupons) Execute(ctx context.Context, userName string, coupons int) error {
	if coupons < 0 {
		return ErrNegativeCoupons
	}
	return uc.store.SetCoupons(ctx, userName, coupons)
}
