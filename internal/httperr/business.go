package httperr

import "errors"

type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindExhausted Kind = "exhausted"
	KindInvalid   Kind = "invalid"
)

// BusinessError is an expected failure of a domain rule. It is comparable,
// so errors.Is matches two errors with the same kind and code.
type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func ErrExhausted(code string) error {
	return BusinessError{Kind: KindExhausted, Code: code}
}

func ErrInvalid(code string) error {
	return BusinessError{Kind: KindInvalid, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf returns the kind of a business error, or "" for anything else.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
