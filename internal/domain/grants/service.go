package grants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caregiver-access/internal/domain/permissions"
	"caregiver-access/internal/ports/identity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("duplicate live grant")
)

// DuplicateGrantError envuelve ErrConflict y expone el grant existente,
// para que el 409 le diga al dueño cuál es el grant que ya cubre el par.
type DuplicateGrantError struct {
	ExistingID string
}

func (e *DuplicateGrantError) Error() string {
	return fmt.Sprintf("duplicate live grant: existing grant %s", e.ExistingID)
}

func (e *DuplicateGrantError) Unwrap() error { return ErrConflict }

type Service struct {
	repo        Repository
	provisioner identity.Provisioner // puede ser nil (modo dev: sin emisión de credenciales)
	log         *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, provisioner identity.Provisioner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		log:         log,
		now:         time.Now,
	}
}

type CreateInput struct {
	OwnerAccountID      string
	CaregiverEmail      string
	CaregiverName       string
	RelationshipType    RelationshipType
	RelationshipDetails string
	PermissionLevel     permissions.Level

	// Solo para PermissionLevel == custom. Con un preset con nombre,
	// traer un set explícito es un error de validación (no lo ignoramos en silencio).
	CustomPermissions *permissions.Set
}

// Create registra un grant en pending y dispara la emisión de credenciales
// del cuidador (colaborador externo, best-effort).
func (s *Service) Create(ctx context.Context, in CreateInput) (Grant, error) {
	ownerID := strings.TrimSpace(in.OwnerAccountID)
	email := strings.ToLower(strings.TrimSpace(in.CaregiverEmail))
	name := strings.TrimSpace(in.CaregiverName)

	if ownerID == "" || email == "" || name == "" {
		return Grant{}, ErrValidation
	}
	if !strings.Contains(email, "@") {
		return Grant{}, ErrValidation
	}
	if !in.RelationshipType.isValid() {
		return Grant{}, ErrValidation
	}

	var set permissions.Set
	switch {
	case in.PermissionLevel == permissions.LevelCustom:
		if in.CustomPermissions == nil {
			return Grant{}, ErrValidation
		}
		set = *in.CustomPermissions
	case in.CustomPermissions != nil:
		return Grant{}, ErrValidation
	default:
		resolved, err := permissions.Resolve(in.PermissionLevel)
		if err != nil {
			// Fail closed: nivel desconocido => 400, nunca "full" por defecto.
			return Grant{}, ErrValidation
		}
		set = resolved
	}

	// Duplicados: cualquier grant vivo (pending o active) del par conflictúa.
	if existing, err := s.repo.GetLiveByOwnerAndEmail(ctx, ownerID, email); err == nil && existing.ID != "" {
		return Grant{}, &DuplicateGrantError{ExistingID: existing.ID}
	}

	now := s.now()
	g := Grant{
		ID:                  uuid.NewString(),
		OwnerAccountID:      ownerID,
		CaregiverEmail:      email,
		CaregiverName:       name,
		RelationshipType:    in.RelationshipType,
		RelationshipDetails: strings.TrimSpace(in.RelationshipDetails),
		PermissionLevel:     in.PermissionLevel,
		Permissions:         set,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}

	if s.provisioner != nil {
		if err := s.provisioner.IssueCredentials(ctx, g.ID, email, name); err != nil {
			// El grant ya existe; la emisión se puede reintentar desde el IdP.
			s.log.Warn("credential issuance failed",
				zap.String("grant_id", g.ID),
				zap.Error(err))
		}
	}

	return g, nil
}

// UpdatePermissions reemplaza el Set completo y fuerza level=custom.
// La transición a custom es one-way: no re-encajamos a un preset con nombre
// aunque el nuevo Set coincida con su mapping canónico.
func (s *Service) UpdatePermissions(ctx context.Context, grantID string, set permissions.Set) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrValidation
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	if g.Status == StatusRevoked {
		return Grant{}, ErrInvalidState
	}

	g.Permissions = set
	g.PermissionLevel = permissions.LevelCustom
	g.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Activate transiciona pending → active en el primer login del cuidador.
func (s *Service) Activate(ctx context.Context, grantID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrValidation
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	if g.Status != StatusPending {
		return Grant{}, ErrInvalidState
	}

	now := s.now()
	g.Status = StatusActive
	g.LastLoginAt = &now
	g.UpdatedAt = now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Revoke es idempotente: revocar un grant ya revocado es éxito sin cambios.
// Apenas retorna, todo Evaluate posterior sobre este grant deniega.
func (s *Service) Revoke(ctx context.Context, grantID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrValidation
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.Status == StatusRevoked {
		return g, nil
	}

	now := s.now()
	g.Status = StatusRevoked
	g.UpdatedAt = now
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Evaluate decide Allow/Deny para una acción del cuidador. Sin efectos
// secundarios; se llama sincrónicamente antes de ejecutar cualquier mutación.
// Deny no es un error: el error solo reporta fallas de sistema.
func (s *Service) Evaluate(ctx context.Context, grantID string, capability permissions.Capability) (Decision, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" || !capability.IsValid() {
		return Decision{}, ErrValidation
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		// Grant desconocido se reporta igual que inactivo: deny, no 500.
		return Deny(DenyGrantInactive), nil
	}
	if g.Status != StatusActive {
		return Deny(DenyGrantInactive), nil
	}

	if !g.Permissions.Has(capability) {
		return Deny(DenyCapabilityMissing), nil
	}
	return Allow(), nil
}

// NoteAction actualiza los contadores derivados después de registrar
// una acción en el activity log.
func (s *Service) NoteAction(ctx context.Context, grantID string, at time.Time) error {
	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return ErrNotFound
	}

	g.TotalActions++
	g.LastActionAt = &at
	g.UpdatedAt = s.now()

	return s.repo.Update(ctx, g)
}

func (s *Service) GetByID(ctx context.Context, grantID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrValidation
	}
	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	return g, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerAccountID string) ([]Grant, error) {
	ownerAccountID = strings.TrimSpace(ownerAccountID)
	if ownerAccountID == "" {
		return nil, ErrValidation
	}
	return s.repo.ListByOwner(ctx, ownerAccountID)
}

func (rt RelationshipType) isValid() bool {
	switch rt {
	case RelationshipParent, RelationshipGuardian, RelationshipCaregiver, RelationshipHelper, RelationshipOther:
		return true
	default:
		return false
	}
}
