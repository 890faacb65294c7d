// Package ctxutil carries the acting user through request contexts. It
// depends only on the model types so any layer can import it.
package ctxutil

import (
	"context"

	"github.com/newsroomhq/rundown/internal/models"
)

// Actor is the gateway-verified identity a request runs as.
type Actor struct {
	UserID string
	Role   models.Role
}

type actorKey struct{}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor from context, or a zero Actor if unset.
func ActorFromContext(ctx context.Context) Actor {
	if v, ok := ctx.Value(actorKey{}).(Actor); ok {
		return v
	}
	return Actor{}
}
