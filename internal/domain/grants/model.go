package grants

import (
	"time"

	"caregiver-access/internal/domain/permissions"
)

// RelationshipType describe el vínculo del cuidador con el vendedor.
// @Enum parent, guardian, caregiver, helper, other
type RelationshipType string

const (
	RelationshipParent    RelationshipType = "parent"
	RelationshipGuardian  RelationshipType = "guardian"
	RelationshipCaregiver RelationshipType = "caregiver"
	RelationshipHelper    RelationshipType = "helper"
	RelationshipOther     RelationshipType = "other"
)

type Status string

const (
	// StatusPending: invitación creada, el cuidador todavía no inició sesión.
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	// StatusRevoked es terminal. Para re-admitir al mismo cuidador se crea un grant nuevo.
	StatusRevoked Status = "revoked"
)

// Grant vincula la identidad de un cuidador con una cuenta de vendedor.
// Cada grant es un scope de autorización propio: las capabilities nunca
// se transfieren entre grants de distintas cuentas.
type Grant struct {
	ID string

	OwnerAccountID string // cuenta delegada (vendedor)

	CaregiverEmail string
	CaregiverName  string

	RelationshipType    RelationshipType
	RelationshipDetails string

	PermissionLevel permissions.Level
	Permissions     permissions.Set

	Status Status

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time

	// Contadores derivados del activity log (denormalizados; el log manda).
	TotalActions int64
	LastActionAt *time.Time

	RevokedAt *time.Time
}

// DenyReason explica un Deny del evaluador. Es un resultado de negocio
// esperado, no un error de sistema: los callers no deben reintentarlo.
type DenyReason string

const (
	DenyGrantInactive     DenyReason = "grant_inactive"
	DenyCapabilityMissing DenyReason = "capability_not_granted"
)

// Decision es el resultado de evaluar una capability contra un grant.
type Decision struct {
	Allowed bool
	Reason  DenyReason // vacío si Allowed
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
