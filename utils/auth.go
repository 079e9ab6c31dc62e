package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAuthorID is returned when AUTHOR_ID is not a decimal user id.
var ErrInvalidAuthorID = errors.New("invalid author id")

// AuthorizationContext holds the single user allowed to run privileged commands.
// The zero value means no author is configured, and every privileged check fails.
type AuthorizationContext struct {
	AuthorizedUserID uint64
}

// NewAuth parses the configured author id. An empty value yields an unconfigured context
// without error; a malformed one yields an unconfigured context and ErrInvalidAuthorID.
func NewAuth(authorID string) (AuthorizationContext, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return AuthorizationContext{}, nil
	}

	id, err := ParseSnowflake(authorID)
	if err != nil || id == 0 {
		return AuthorizationContext{}, fmt.Errorf("%w %q", ErrInvalidAuthorID, authorID)
	}
	return AuthorizationContext{AuthorizedUserID: id}, nil
}

// Configured reports whether an author id was loaded.
func (a AuthorizationContext) Configured() bool {
	return a.AuthorizedUserID != 0
}

// IsAuthor checks if a user is the configured author.
func (a AuthorizationContext) IsAuthor(userID uint64) bool {
	return a.Configured() && userID == a.AuthorizedUserID
}

// ParseSnowflake converts a Discord id string to its numeric form.
func ParseSnowflake(id string) (uint64, error) {
	return strconv.ParseUint(id, 10, 64)
}
