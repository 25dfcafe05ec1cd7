// Package authz decides the acting identity for each request. A profile is
// reachable through two disjoint credential paths: a staff session bearer
// token, or a single-profile capability token held by a parent. The gate
// resolves whichever is presented into an explicit Actor exactly once per
// request; handlers match on the actor kind instead of re-deriving
// credentials ad hoc.
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/brightwave/profiler/internal/staff"
	"github.com/brightwave/profiler/internal/token"
)

// ErrInvalidToken is returned when a presented capability token is
// malformed, expired, or signed with the wrong key.
var ErrInvalidToken = errors.New("invalid profile token")

// ErrTokenMismatch is returned when a valid capability token names a
// different profile than the one the request targets.
var ErrTokenMismatch = errors.New("token does not match profile")

// ErrUnauthenticated is returned when no usable credential is presented.
var ErrUnauthenticated = errors.New("authentication required")

// ErrPasswordChangeRequired is returned for staff accounts that must change
// their password before doing anything else.
var ErrPasswordChangeRequired = errors.New("password change required")

// ErrSuperuserRequired is returned when a valid staff session lacks the
// superuser flag.
var ErrSuperuserRequired = errors.New("superuser access required")

// Kind discriminates the Actor union.
type Kind int

const (
	// KindAnonymous means no credential resolved.
	KindAnonymous Kind = iota
	// KindParent means a capability token resolved; the actor is scoped to
	// exactly one profile.
	KindParent
	// KindTeacher means a staff session resolved.
	KindTeacher
)

// Actor is the resolved identity of a request.
type Actor struct {
	Kind Kind
	// Account is set for KindTeacher.
	Account *staff.Account
	// ProfileID is the capability token's subject, set for KindParent.
	ProfileID string
}

// SessionResolver maps a session bearer token to a staff account.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionToken string) (*staff.Account, error)
}

// Gate resolves request credentials into Actors.
type Gate struct {
	codec    *token.Codec
	sessions SessionResolver
}

// NewGate creates a Gate over the capability token codec and the staff
// session resolver.
func NewGate(codec *token.Codec, sessions SessionResolver) *Gate {
	return &Gate{codec: codec, sessions: sessions}
}

// Resolve determines the Actor for a request. A profileToken parameter
// takes priority over the Authorization header; the two credential shapes
// are mutually exclusive per request. A presented-but-invalid capability
// token is a hard failure, while an unusable bearer token degrades to
// Anonymous and is caught by the endpoint's own requirement.
func (g *Gate) Resolve(r *http.Request) (Actor, error) {
	if raw := r.URL.Query().Get("profileToken"); raw != "" {
		claims, err := g.codec.Verify(raw)
		if err != nil {
			return Actor{}, ErrInvalidToken
		}
		return Actor{Kind: KindParent, ProfileID: claims.Subject}, nil
	}

	if bearer := bearerToken(r); bearer != "" {
		account, err := g.sessions.Resolve(r.Context(), bearer)
		if err != nil {
			if errors.Is(err, staff.ErrInvalidSession) {
				return Actor{Kind: KindAnonymous}, nil
			}
			return Actor{}, err
		}
		return Actor{Kind: KindTeacher, Account: account}, nil
	}

	return Actor{Kind: KindAnonymous}, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// BindParent checks that a parent actor's capability token covers the
// profile the request targets. A valid token for profile A never
// authorizes an operation on profile B.
func (a Actor) BindParent(profileID string) error {
	if a.Kind != KindParent {
		return ErrUnauthenticated
	}
	if a.ProfileID != profileID {
		return ErrTokenMismatch
	}
	return nil
}

// RequireTeacher checks that the actor is a staff session fit for protected
// operations. Accounts flagged for a forced password change are rejected
// everywhere except the password change operation itself.
func (a Actor) RequireTeacher(allowPendingPassword bool) error {
	if a.Kind != KindTeacher {
		return ErrUnauthenticated
	}
	if a.Account.ChangePasswordOnLogin && !allowPendingPassword {
		return ErrPasswordChangeRequired
	}
	return nil
}

// RequireSuperuser is RequireTeacher plus the superuser flag.
func (a Actor) RequireSuperuser() error {
	if err := a.RequireTeacher(false); err != nil {
		return err
	}
	if !a.Account.IsSuperuser {
		return ErrSuperuserRequired
	}
	return nil
}
