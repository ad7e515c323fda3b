package accounts

import "context"

// Directory responde si una cuenta de vendedor existe.
// Lo provee el servicio de cuentas de la plataforma.
type Directory interface {
	Exists(ctx context.Context, ownerAccountID string) (bool, error)
}
