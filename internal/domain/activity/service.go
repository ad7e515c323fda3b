package activity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrValidation = errors.New("invalid input")
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

type RecordInput struct {
	GrantID       string
	CaregiverName string
	Action        Action
	ActionDetails string
	ResourceType  string
	ResourceName  string
}

// Record agrega la entrada al log. El logging es best-effort respecto de la
// acción ya ejecutada, pero nunca se descarta en silencio: ante una falla
// del repo reintentamos una vez y, si vuelve a fallar, devolvemos el error.
func (s *Service) Record(ctx context.Context, in RecordInput) (Record, error) {
	grantID := strings.TrimSpace(in.GrantID)
	if grantID == "" || in.Action == "" {
		return Record{}, ErrValidation
	}
	if _, ok := RequiredCapability(in.Action); !ok {
		return Record{}, ErrValidation
	}

	rec := Record{
		ID:            uuid.NewString(),
		GrantID:       grantID,
		CaregiverName: strings.TrimSpace(in.CaregiverName),
		Action:        in.Action,
		ActionDetails: strings.TrimSpace(in.ActionDetails),
		ResourceType:  strings.TrimSpace(in.ResourceType),
		ResourceName:  strings.TrimSpace(in.ResourceName),
		CreatedAt:     s.now(),
	}

	saved, err := s.repo.Append(ctx, rec)
	if err != nil {
		s.log.Warn("activity append failed, retrying once",
			zap.String("grant_id", grantID),
			zap.Error(err))

		saved, err = s.repo.Append(ctx, rec)
		if err != nil {
			return Record{}, err
		}
	}

	return saved, nil
}

// ListForGrant pagina el log del grant, del más nuevo al más viejo.
// El cursor es reiniciable: el NextCursor de una página retoma exactamente
// donde quedó, sin huecos ni duplicados.
func (s *Service) ListForGrant(ctx context.Context, grantID, cursor string, limit int) (Page, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Page{}, ErrValidation
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	beforeSeq := int64(0)
	if c := strings.TrimSpace(cursor); c != "" {
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil || n <= 0 {
			return Page{}, ErrValidation
		}
		beforeSeq = n
	}

	items, err := s.repo.ListByGrant(ctx, grantID, beforeSeq, limit)
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: items}
	if len(items) == limit {
		page.NextCursor = strconv.FormatInt(items[len(items)-1].Seq, 10)
	}
	return page, nil
}
