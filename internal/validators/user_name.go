package validators

import "regexp"

var userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]{2,99}$`)

// IsUserNameValid accepts 3 to 100 characters of letters, digits and
// ". _ @ -", starting with a letter or digit.
func IsUserNameValid(name string) bool {
	return userNamePattern.MatchString(name)
}
