// Package repository хранит графы и журналы профилирования в PostgreSQL
package repository

import (
	"context"
	"time"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/services/routing-svc/internal/profiling"
)

// ErrGraphNotFound граф с таким id отсутствует
var ErrGraphNotFound = apperror.New(apperror.CodeNotFound, "graph not found")

// GraphRecord метаданные сохранённого графа
type GraphRecord struct {
	ID          string
	Name        string
	Fingerprint string
	VertexCount int
	EdgeCount   int
	CreatedAt   time.Time
}

// ProfileRun сохранённая запись профилировщика
type ProfileRun struct {
	ID          string
	GraphID     string // пусто, если прогон не привязан к графу
	Operation   string
	Duration    time.Duration
	MemoryBytes int64
	Error       string
	StartedAt   time.Time
}

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (o *ListOptions) normalize() ListOptions {
	out := ListOptions{Limit: defaultLimit}
	if o != nil {
		out = *o
	}
	if out.Limit <= 0 {
		out.Limit = defaultLimit
	}
	out.Limit = min(out.Limit, maxLimit)
	out.Offset = max(out.Offset, 0)
	return out
}

// GraphRepository интерфейс репозитория
type GraphRepository interface {
	// Графы
	SaveGraph(ctx context.Context, name string, g *domain.Graph) (*GraphRecord, error)
	GetByID(ctx context.Context, id string) (*GraphRecord, error)
	LoadGraph(ctx context.Context, id string) (*domain.Graph, *GraphRecord, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*GraphRecord, error)
	List(ctx context.Context, opts *ListOptions) ([]*GraphRecord, int64, error)
	Delete(ctx context.Context, id string) error

	// Профилирование
	SaveProfileRuns(ctx context.Context, graphID string, records []profiling.Record) (int64, error)
	ListProfileRuns(ctx context.Context, graphID string, opts *ListOptions) ([]*ProfileRun, error)
}
