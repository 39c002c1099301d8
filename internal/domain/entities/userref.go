package entities

import (
	"strings"

	"github.com/google/uuid"
)

// UserRefKind tags how a user was referenced on the wire
type UserRefKind int

const (
	RefByID UserRefKind = iota
	RefByEmail
)

// UserRef is a typed user identifier. Callers pass either a UUID or an
// email address in the URL; the distinction is resolved once at the HTTP
// boundary instead of being re-sniffed in every handler.
type UserRef struct {
	Kind  UserRefKind
	ID    uuid.UUID
	Email string
}

// ParseUserRef classifies a raw path segment as a UUID or an email
func ParseUserRef(raw string) UserRef {
	if id, err := uuid.Parse(raw); err == nil {
		return UserRef{Kind: RefByID, ID: id}
	}
	return UserRef{Kind: RefByEmail, Email: strings.ToLower(strings.TrimSpace(raw))}
}

func (r UserRef) String() string {
	if r.Kind == RefByID {
		return r.ID.String()
	}
	return r.Email
}
