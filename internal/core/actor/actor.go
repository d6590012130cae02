// Package actor identifies the user performing an operation.
//
// Core services take the Actor as an explicit argument; the context helpers
// here exist only so the HTTP layer can hand the authenticated user to
// handlers and so the logger can attach user fields.
package actor

import (
	"context"

	"atelier/internal/core/id"
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID id.ID
	Email  string
	Name   string
}

// System is used by maintenance jobs and seeds that run without a user.
func System() Actor {
	return Actor{Email: "system@atelier.local", Name: "system"}
}

type actorKey struct{}

// WithActor stores the actor in the context (HTTP middleware only).
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor from context, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
