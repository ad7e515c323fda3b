package grants

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByOwner(ctx context.Context, ownerAccountID string) ([]Grant, error)
	// GetLiveByOwnerAndEmail devuelve el grant no-revocado (pending o active)
	// del par (owner, email), si existe. Sirve al chequeo de duplicados.
	GetLiveByOwnerAndEmail(ctx context.Context, ownerAccountID, caregiverEmail string) (Grant, error)
}
