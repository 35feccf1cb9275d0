package audit

import "context"

type Repository interface {
	Append(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int, error)
}

type ListFilter struct {
	Table    Table
	RecordID int64
	Limit    int
	Offset   int
}
