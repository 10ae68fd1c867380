package entity

import "github.com/google/uuid"

// Actor is the authenticated account acting on a request. It is resolved
// once by the auth middleware and passed by value from there on.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func ActorOf(a *Account) Actor {
	return Actor{ID: a.ID, Role: a.Role}
}
