package postgres

import (
	"context"
	"database/sql"
	"strings"

	"caregiver-access/internal/domain/activity"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Append inserta el record asignando el próximo seq de su grant.
// El UPDATE ... RETURNING sobre caregiver_activity_seq serializa los
// appends concurrentes del mismo grant (lock de fila), que es justo
// la garantía de orden monotónico por grant que pide el log.
func (r *ActivityRepo) Append(ctx context.Context, rec activity.Record) (activity.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return activity.Record{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO caregiver_activity_seq (grant_id, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (grant_id)
		DO UPDATE SET last_seq = caregiver_activity_seq.last_seq + 1
		RETURNING last_seq
	`, rec.GrantID).Scan(&seq)
	if err != nil {
		return activity.Record{}, err
	}

	rec.Seq = seq

	_, err = tx.ExecContext(ctx, `
		INSERT INTO caregiver_activity (
			id, grant_id, caregiver_name,
			action, action_details,
			resource_type, resource_name,
			seq, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rec.ID,
		rec.GrantID,
		rec.CaregiverName,
		string(rec.Action),
		rec.ActionDetails,
		rec.ResourceType,
		rec.ResourceName,
		rec.Seq,
		rec.CreatedAt,
	)
	if err != nil {
		return activity.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return activity.Record{}, err
	}
	return rec, nil
}

func (r *ActivityRepo) ListByGrant(ctx context.Context, grantID string, beforeSeq int64, limit int) ([]activity.Record, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, nil
	}

	query := `
		SELECT
			id, grant_id, caregiver_name,
			action, action_details,
			resource_type, resource_name,
			seq, created_at
		FROM caregiver_activity
		WHERE grant_id = $1
	`
	args := []any{grantID}

	if beforeSeq > 0 {
		query += ` AND seq < $2 ORDER BY seq DESC LIMIT $3`
		args = append(args, beforeSeq, limit)
	} else {
		query += ` ORDER BY seq DESC LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Record, 0, limit)
	for rows.Next() {
		var rec activity.Record
		var action string

		if err := rows.Scan(
			&rec.ID,
			&rec.GrantID,
			&rec.CaregiverName,
			&action,
			&rec.ActionDetails,
			&rec.ResourceType,
			&rec.ResourceName,
			&rec.Seq,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		rec.Action = activity.Action(action)
		out = append(out, rec)
	}

	return out, rows.Err()
}
