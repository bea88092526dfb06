package model

import "context"

type actorKey struct{}

// WithActor returns a context carrying the id of the employee performing the request.
func WithActor(ctx context.Context, actor int64) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting employee id, or 0 when none was set.
func ActorFromContext(ctx context.Context) int64 {
	if actor, ok := ctx.Value(actorKey{}).(int64); ok {
		return actor
	}
	return 0
}

type correlationKey struct{}

// WithCorrelationID returns a context carrying the request correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the request correlation id, or "" when none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
