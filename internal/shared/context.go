package shared

import "context"

// Role enumerates the access roles known to the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAccounts Role = "accounts"
	RoleSales    Role = "sales"
	RoleDirector Role = "director"
	RoleLoading  Role = "loading"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAccounts, RoleSales, RoleDirector, RoleLoading:
		return true
	}
	return false
}

// Actor identifies the authenticated user performing an operation.
// Every mutating operation takes an Actor explicitly; there is no
// ambient logged-in state.
type Actor struct {
	UserID   int64
	Username string
	Role     Role
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
