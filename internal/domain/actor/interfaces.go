package actor

import "context"

// Repository provides persistence for actors.
type Repository interface {
	// Get looks up self-service profiles first, then the predefined directories.
	Get(ctx context.Context, id string) (*Actor, error)
	Create(ctx context.Context, a *Actor) error
	Update(ctx context.Context, a *Actor) (*Actor, error)
}
