package user

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/models"
)

type Authenticate struct {
	store Store
}

func NewAuthenticate(store Store) *Authenticate {
	return &Authenticate{store: store}
}

// Execute checks the password. Unknown users and wrong passwords fail the
// same way.
func (uc *Authenticate) Execute(ctx context.Context, userName, password string) (*models.User, error) {
	u, err := uc.store.FindUser(ctx, userName)
	if err != nil {
		if httperr.KindOf(err) == httperr.KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
