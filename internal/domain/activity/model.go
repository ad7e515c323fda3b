package activity

import "time"

// Record es una entrada append-only del log de actividad de un grant.
// Inmutable una vez escrita; sobrevive a la revocación del grant
// (el audit trail no se borra nunca).
type Record struct {
	ID      string
	GrantID string

	// Snapshot del nombre al momento de la acción (denormalizado a propósito)
	CaregiverName string

	Action        Action
	ActionDetails string

	ResourceType string
	ResourceName string

	// Seq es monotónico por grant: garantiza el orden del log
	// aunque dos acciones caigan en el mismo timestamp.
	Seq int64

	CreatedAt time.Time
}

// Page es una página del log, de la más nueva a la más vieja.
type Page struct {
	Items []Record
	// NextCursor reinicia el listado donde quedó; vacío si no hay más.
	NextCursor string
}
