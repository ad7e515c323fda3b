package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"caregiver-access/internal/domain/grants"
	"caregiver-access/internal/domain/permissions"
)

type GrantsRepo struct {
	db *sql.DB
}

func NewGrantsRepo(db *sql.DB) *GrantsRepo {
	return &GrantsRepo{db: db}
}

const grantColumns = `
	id, owner_account_id, caregiver_email, caregiver_name,
	relationship_type, relationship_details,
	permission_level, permissions, status,
	created_at, updated_at, last_login_at,
	total_actions, last_action_at, revoked_at
`

func (r *GrantsRepo) Create(ctx context.Context, g grants.Grant) error {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO caregiver_grants (`+grantColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		g.ID,
		g.OwnerAccountID,
		g.CaregiverEmail,
		g.CaregiverName,
		string(g.RelationshipType),
		g.RelationshipDetails,
		string(g.PermissionLevel),
		perms,
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		toNullTime(g.LastLoginAt),
		g.TotalActions,
		toNullTime(g.LastActionAt),
		toNullTime(g.RevokedAt),
	)
	return err
}

func (r *GrantsRepo) Update(ctx context.Context, g grants.Grant) error {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE caregiver_grants
		SET
			permission_level = $2,
			permissions = $3,
			status = $4,
			updated_at = $5,
			last_login_at = $6,
			total_actions = $7,
			last_action_at = $8,
			revoked_at = $9
		WHERE id = $1
	`,
		g.ID,
		string(g.PermissionLevel),
		perms,
		string(g.Status),
		g.UpdatedAt,
		toNullTime(g.LastLoginAt),
		g.TotalActions,
		toNullTime(g.LastActionAt),
		toNullTime(g.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GrantsRepo) GetByID(ctx context.Context, id string) (grants.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return grants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM caregiver_grants
		WHERE id = $1
	`, id)

	return scanGrant(row)
}

func (r *GrantsRepo) ListByOwner(ctx context.Context, ownerAccountID string) ([]grants.Grant, error) {
	ownerAccountID = strings.TrimSpace(ownerAccountID)
	if ownerAccountID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM caregiver_grants
		WHERE owner_account_id = $1
		ORDER BY created_at ASC
	`, ownerAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grants.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *GrantsRepo) GetLiveByOwnerAndEmail(ctx context.Context, ownerAccountID, caregiverEmail string) (grants.Grant, error) {
	ownerAccountID = strings.TrimSpace(ownerAccountID)
	caregiverEmail = strings.TrimSpace(caregiverEmail)
	if ownerAccountID == "" || caregiverEmail == "" {
		return grants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM caregiver_grants
		WHERE owner_account_id = $1
		  AND caregiver_email = $2
		  AND status <> 'revoked'
		ORDER BY updated_at DESC, created_at DESC
		LIMIT 1
	`, ownerAccountID, caregiverEmail)

	return scanGrant(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (grants.Grant, error) {
	var g grants.Grant
	var relType, level, status string
	var perms []byte
	var lastLoginAt, lastActionAt, revokedAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.OwnerAccountID,
		&g.CaregiverEmail,
		&g.CaregiverName,
		&relType,
		&g.RelationshipDetails,
		&level,
		&perms,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&lastLoginAt,
		&g.TotalActions,
		&lastActionAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return grants.Grant{}, ErrNotFound
		}
		return grants.Grant{}, err
	}

	g.RelationshipType = grants.RelationshipType(relType)
	g.PermissionLevel = permissions.Level(level)
	g.Status = grants.Status(status)

	if err := json.Unmarshal(perms, &g.Permissions); err != nil {
		return grants.Grant{}, err
	}

	g.LastLoginAt = fromNullTime(lastLoginAt)
	g.LastActionAt = fromNullTime(lastActionAt)
	g.RevokedAt = fromNullTime(revokedAt)

	return g, nil
}

// helpers
func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
