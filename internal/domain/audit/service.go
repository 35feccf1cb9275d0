package audit

import (
	"context"
	"strings"

	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/pagination"
)

var ErrUnknownTable = apperr.New(apperr.KindValidation, "unknown table")

// Service es la lectura del activity log (staff). La escritura va por Recorder.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListInput struct {
	Table    string
	RecordID int64
	Page     pagination.Params
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Entry, int, error) {
	f := ListFilter{
		RecordID: in.RecordID,
		Limit:    in.Page.Limit,
		Offset:   in.Page.Offset(),
	}
	if t := strings.TrimSpace(in.Table); t != "" {
		table, ok := ParseTable(t)
		if !ok {
			return nil, 0, apperr.Wrapf(ErrUnknownTable, "unknown table %q", t)
		}
		f.Table = table
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.OrStorage(err, "failed to list activity")
	}
	return items, total, nil
}

func ParseTable(s string) (Table, bool) {
	switch Table(s) {
	case TableAnimals, TableAdopters, TableApplications:
		return Table(s), true
	default:
		return "", false
	}
}
