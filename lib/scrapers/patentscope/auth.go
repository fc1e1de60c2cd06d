package patentscope

import (
	"context"
	"errors"
)

// Authenticator is the login collaborator. The engine never drives the
// login form itself; it only asks whether the session is authenticated
// and, at crawl start, gives the collaborator one chance to establish a
// session. The portal answers unauthenticated queries too, so a failed
// login degrades to anonymous mode instead of aborting.
type Authenticator interface {
	Authenticated() bool
	Reauthenticate(ctx context.Context) error
}

var ErrAuthenticationFailed = errors.New("authentication failed")

// Anonymous never authenticates and never fails.
type Anonymous struct{}

func (Anonymous) Authenticated() bool { return false }

func (Anonymous) Reauthenticate(ctx context.Context) error { return nil }
