package activity

import "context"

type Repository interface {
	// Append persiste el record asignándole el próximo Seq de su grant.
	// Devuelve el record con Seq seteado.
	Append(ctx context.Context, rec Record) (Record, error)

	// ListByGrant devuelve records del grant con Seq < beforeSeq,
	// ordenados de más nuevo a más viejo, hasta limit.
	// beforeSeq <= 0 significa "desde el tope".
	ListByGrant(ctx context.Context, grantID string, beforeSeq int64, limit int) ([]Record, error)
}
