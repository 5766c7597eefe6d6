// Package identity carries the authenticated principal through a request.
//
// Authentication middleware attaches whatever its mechanism produced with
// WithAuthentication. CurrentPrincipal interprets that result. Guard resolves
// the principal once and publishes it into the request context, where
// CurrentRequestPrincipal reads it back for the rest of the request.
package identity

import (
	"context"
	"fmt"

	"github.com/mcoot/charsheet-go/internal/model"
)

// Authentication is the result of a successful token or credential check
type Authentication struct {
	Principal model.Principal
	// Token is the bearer credential the principal was authenticated with, if any
	Token string
}

type authenticationKey struct{}

type requestPrincipalKey struct{}

// WithAuthentication returns a context carrying an authentication result
func WithAuthentication(ctx context.Context, auth any) context.Context {
	return context.WithValue(ctx, authenticationKey{}, auth)
}

// CurrentPrincipal extracts the principal from the authentication attached to ctx.
// It reports false when nothing is attached or the result has an unexpected shape.
func CurrentPrincipal(ctx context.Context) (model.Principal, bool) {
	switch auth := ctx.Value(authenticationKey{}).(type) {
	case *Authentication:
		if auth == nil {
			return model.Principal{}, false
		}
		return auth.Principal, true
	case model.Principal:
		return auth, true
	default:
		return model.Principal{}, false
	}
}

// Guard resolves the principal and publishes it into the returned context.
// It fails with model.ErrUnauthenticated when no principal can be resolved.
// A principal that is already published is left untouched.
func Guard(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(requestPrincipalKey{}).(model.Principal); ok {
		return ctx, nil
	}
	p, ok := CurrentPrincipal(ctx)
	if !ok {
		return ctx, model.ErrUnauthenticated
	}
	return context.WithValue(ctx, requestPrincipalKey{}, p), nil
}

// Guarded runs fn with a guarded context. fn does not run if the guard fails.
func Guarded(ctx context.Context, fn func(ctx context.Context) error) error {
	guarded, err := Guard(ctx)
	if err != nil {
		return err
	}
	return fn(guarded)
}

// CurrentRequestPrincipal returns the principal published by Guard.
// Calling it outside a guarded operation is a programming error and yields model.ErrIllegalState.
func CurrentRequestPrincipal(ctx context.Context) (model.Principal, error) {
	p, ok := ctx.Value(requestPrincipalKey{}).(model.Principal)
	if !ok {
		return model.Principal{}, fmt.Errorf("%w: no principal published for this request", model.ErrIllegalState)
	}
	return p, nil
}
