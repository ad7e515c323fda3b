package memory

import (
	"context"
	"errors"
	"sync"

	"caregiver-access/internal/domain/activity"
)

type activityRepo struct {
	mu      sync.RWMutex
	byGrant map[string][]activity.Record // orden de inserción == orden por Seq
	lastSeq map[string]int64
}

func NewActivityRepo() activity.Repository {
	return &activityRepo{
		byGrant: make(map[string][]activity.Record),
		lastSeq: make(map[string]int64),
	}
}

func (r *activityRepo) Append(ctx context.Context, rec activity.Record) (activity.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" || rec.GrantID == "" {
		return activity.Record{}, errors.New("record id and grant id required")
	}

	r.lastSeq[rec.GrantID]++
	rec.Seq = r.lastSeq[rec.GrantID]

	r.byGrant[rec.GrantID] = append(r.byGrant[rec.GrantID], rec)
	return rec, nil
}

func (r *activityRepo) ListByGrant(ctx context.Context, grantID string, beforeSeq int64, limit int) ([]activity.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.byGrant[grantID]
	out := make([]activity.Record, 0, limit)

	// Recorremos de atrás hacia adelante: del más nuevo al más viejo
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		if beforeSeq > 0 && recs[i].Seq >= beforeSeq {
			continue
		}
		out = append(out, recs[i])
	}
	return out, nil
}
