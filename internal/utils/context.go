package utils

import "context"

type contextKey string

const (
	ActorIDKey    contextKey = "actor_id"
	ActorRoleKey  contextKey = "actor_role"
	ActorEmailKey contextKey = "actor_email"
)

// Actor roles as carried in JWT claims.
const (
	RoleCustomer   = "customer"
	RoleRestaurant = "restaurant"
	RoleCourier    = "courier"
	RoleAdmin      = "admin"
)

// SetActorContext sets actor info into context (called by middleware)
func SetActorContext(ctx context.Context, id, email, role string) context.Context {
	ctx = context.WithValue(ctx, ActorIDKey, id)
	ctx = context.WithValue(ctx, ActorEmailKey, email)
	ctx = context.WithValue(ctx, ActorRoleKey, role)
	return ctx
}

// GetActorIDFromContext retrieves the acting user's id safely
func GetActorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ActorIDKey).(string)
	return id, ok && id != ""
}

func GetActorEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(ActorEmailKey).(string)
	return email
}

func GetActorRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ActorRoleKey).(string)
	return role
}
