package user

import "github.com/BruksfildServices01/termine-api/internal/httperr"

var (
	ErrInvalidUserName    = httperr.ErrInvalid("invalid_user_name")
	ErrPasswordTooShort   = httperr.ErrInvalid("password_too_short")
	ErrInvalidRole        = httperr.ErrInvalid("invalid_role")
	ErrNegativeCoupons    = httperr.ErrInvalid("negative_coupons")
	ErrInvalidCredentials = httperr.ErrInvalid("invalid_credentials")
)

const MinPasswordLength = 8
