package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// Document is a JSON-shaped record: string, float64/int64, bool, time.Time,
// []any and map[string]any values only.
type Document struct {
	ID   string
	Data map[string]any
}

type Ref struct {
	Collection string
	ID         string
}

// Path renders the ref as "<collection>/<id>", the form handed to admin views.
func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

// ParseRef splits a path produced by Ref.Path. Collections may themselves be
// paths (users/<uid>/orders), so the id is the last segment.
func ParseRef(path string) (Ref, bool) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return Ref{}, false
	}
	return Ref{Collection: path[:i], ID: path[i+1:]}, true
}

// Filter is an equality match on a top-level field.
type Filter struct {
	Field string
	Value any
}

func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Write is one full-document set inside a BatchWrite.
type Write struct {
	Ref  Ref
	Data map[string]any
}

// Store is the document database the storefront consumes. Every call may fail;
// read-after-write is only assumed within one client.
type Store interface {
	GetCollection(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	GetDocument(ctx context.Context, ref Ref) (Document, error)
	SetDocument(ctx context.Context, ref Ref, data map[string]any) error
	AddDocument(ctx context.Context, collection string, data map[string]any) (string, error)
	UpdateDocument(ctx context.Context, ref Ref, partial map[string]any) error
	DeleteDocument(ctx context.Context, ref Ref) error
	BatchWrite(ctx context.Context, writes []Write) error
}

// Matches applies filters to decoded data; backends without native queries use it.
func Matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}
