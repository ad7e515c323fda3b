package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepo guarda el log en memoria y puede fallar los próximos N Append
// para ejercitar el reintento del servicio.
type testRepo struct {
	byGrant  map[string][]Record
	lastSeq  map[string]int64
	failNext int
	appends  int
}

func newActivityTestRepo() *testRepo {
	return &testRepo{
		byGrant: map[string][]Record{},
		lastSeq: map[string]int64{},
	}
}

func (r *testRepo) Append(ctx context.Context, rec Record) (Record, error) {
	r.appends++
	if r.failNext > 0 {
		r.failNext--
		return Record{}, errors.New("storage unavailable")
	}
	r.lastSeq[rec.GrantID]++
	rec.Seq = r.lastSeq[rec.GrantID]
	r.byGrant[rec.GrantID] = append(r.byGrant[rec.GrantID], rec)
	return rec, nil
}

func (r *testRepo) ListByGrant(ctx context.Context, grantID string, beforeSeq int64, limit int) ([]Record, error) {
	items := r.byGrant[grantID]
	out := make([]Record, 0, limit)
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		if beforeSeq > 0 && items[i].Seq >= beforeSeq {
			continue
		}
		out = append(out, items[i])
	}
	return out, nil
}

func record(t *testing.T, svc *Service, grantID string, action Action) Record {
	t.Helper()
	rec, err := svc.Record(context.Background(), RecordInput{
		GrantID:       grantID,
		CaregiverName: "Ana Torres",
		Action:        action,
		ResourceType:  "product",
		ResourceName:  "Collar tejido",
	})
	require.NoError(t, err)
	return rec
}

func TestRecord_AssignsMonotonicSeqPerGrant(t *testing.T) {
	repo := newActivityTestRepo()
	svc := NewService(repo, nil)

	now := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a1 := record(t, svc, "grant-1", ActionAddedProduct)
	a2 := record(t, svc, "grant-1", ActionEditedProduct)
	b1 := record(t, svc, "grant-2", ActionWithdrewFunds)

	assert.Equal(t, int64(1), a1.Seq)
	assert.Equal(t, int64(2), a2.Seq)
	// cada grant lleva su propia secuencia
	assert.Equal(t, int64(1), b1.Seq)

	assert.NotEmpty(t, a1.ID)
	assert.Equal(t, now, a1.CreatedAt)
	assert.Equal(t, "Ana Torres", a1.CaregiverName)
}

func TestRecord_RetriesOnceOnAppendFailure(t *testing.T) {
	repo := newActivityTestRepo()
	svc := NewService(repo, nil)

	repo.failNext = 1
	rec, err := svc.Record(context.Background(), RecordInput{
		GrantID: "grant-1",
		Action:  ActionMarkedShipment,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Seq)
	assert.Equal(t, 2, repo.appends, "una falla => un reintento")

	// si el reintento también falla, el error sube al caller
	repo.failNext = 2
	_, err = svc.Record(context.Background(), RecordInput{
		GrantID: "grant-1",
		Action:  ActionMarkedShipment,
	})
	require.Error(t, err)
	assert.Equal(t, 4, repo.appends, "exactamente un reintento, no más")
}

func TestRecord_Validation(t *testing.T) {
	repo := newActivityTestRepo()
	svc := NewService(repo, nil)

	_, err := svc.Record(context.Background(), RecordInput{GrantID: "", Action: ActionAddedProduct})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(context.Background(), RecordInput{GrantID: "grant-1", Action: "deleted_account"})
	assert.ErrorIs(t, err, ErrValidation, "acción fuera del vocabulario")

	assert.Zero(t, repo.appends)
}

func TestListForGrant_CursorIsRestartable(t *testing.T) {
	repo := newActivityTestRepo()
	svc := NewService(repo, nil)

	for i := 0; i < 5; i++ {
		record(t, svc, "grant-1", ActionEditedProduct)
	}

	// página 1: más nuevo primero
	p1, err := svc.ListForGrant(context.Background(), "grant-1", "", 2)
	require.NoError(t, err)
	require.Len(t, p1.Items, 2)
	assert.Equal(t, int64(5), p1.Items[0].Seq)
	assert.Equal(t, int64(4), p1.Items[1].Seq)
	require.Equal(t, "4", p1.NextCursor)

	// página 2 retoma exactamente donde quedó
	p2, err := svc.ListForGrant(context.Background(), "grant-1", p1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, p2.Items, 2)
	assert.Equal(t, int64(3), p2.Items[0].Seq)
	assert.Equal(t, int64(2), p2.Items[1].Seq)
	require.Equal(t, "2", p2.NextCursor)

	// página final: corta y sin cursor
	p3, err := svc.ListForGrant(context.Background(), "grant-1", p2.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, p3.Items, 1)
	assert.Equal(t, int64(1), p3.Items[0].Seq)
	assert.Empty(t, p3.NextCursor)

	// sin huecos ni duplicados entre páginas
	seen := map[int64]bool{}
	for _, p := range []Page{p1, p2, p3} {
		for _, it := range p.Items {
			assert.False(t, seen[it.Seq], "seq %d duplicada", it.Seq)
			seen[it.Seq] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestListForGrant_Validation(t *testing.T) {
	repo := newActivityTestRepo()
	svc := NewService(repo, nil)

	_, err := svc.ListForGrant(context.Background(), "", "", 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ListForGrant(context.Background(), "grant-1", "abc", 10)
	assert.ErrorIs(t, err, ErrValidation, "cursor no numérico")

	_, err = svc.ListForGrant(context.Background(), "grant-1", "-3", 10)
	assert.ErrorIs(t, err, ErrValidation)

	// grant sin actividad: página vacía, no error
	p, err := svc.ListForGrant(context.Background(), "grant-1", "", 10)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Empty(t, p.NextCursor)
}
