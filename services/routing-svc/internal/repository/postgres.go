package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"routing/pkg/cache"
	"routing/pkg/database"
	"routing/pkg/domain"
	"routing/pkg/telemetry"
	"routing/services/routing-svc/internal/profiling"
)

var (
	edgeColumns       = []string{"graph_id", "position", "from_vertex", "to_vertex", "weight"}
	profileRunColumns = []string{"id", "graph_id", "operation", "duration_ns", "memory_bytes", "error", "started_at"}
)

// PostgresGraphRepository PostgreSQL реализация
type PostgresGraphRepository struct {
	db database.DB
}

// NewPostgresGraphRepository создаёт новый репозиторий
func NewPostgresGraphRepository(db database.DB) *PostgresGraphRepository {
	return &PostgresGraphRepository{db: db}
}

// SaveGraph сохраняет граф и его рёбра одной транзакцией. Рёбра пишутся через COPY.
func (r *PostgresGraphRepository) SaveGraph(ctx context.Context, name string, g *domain.Graph) (*GraphRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.SaveGraph",
		telemetry.WithAttributes(telemetry.GraphAttributes(g.VertexCount(), g.EdgeCount(), g.Version())...))
	defer span.End()

	edges := g.Edges()
	rec := &GraphRecord{
		Name:        name,
		Fingerprint: cache.GraphFingerprint(g),
		VertexCount: g.VertexCount(),
		EdgeCount:   len(edges),
	}

	_, err := database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (int64, error) {
		query := `
			INSERT INTO graphs (name, fingerprint, vertex_count, edge_count)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		if err := tx.QueryRow(ctx, query, rec.Name, rec.Fingerprint, rec.VertexCount, rec.EdgeCount).
			Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return 0, fmt.Errorf("failed to insert graph: %w", err)
		}

		if len(edges) == 0 {
			return 0, nil
		}

		rows := make([][]any, len(edges))
		for i, e := range edges {
			rows[i] = []any{rec.ID, i, e.From, e.To, e.Weight}
		}
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"graph_edges"}, edgeColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("failed to copy edges: %w", err)
		}
		return copied, nil
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	return rec, nil
}

func (r *PostgresGraphRepository) GetByID(ctx context.Context, id string) (*GraphRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.GetByID")
	defer span.End()

	query := `
		SELECT id, name, fingerprint, vertex_count, edge_count, created_at
		FROM graphs
		WHERE id = $1
	`
	return r.scanRecord(r.db.QueryRow(ctx, query, id))
}

// FindByFingerprint возвращает последний сохранённый граф с таким отпечатком
func (r *PostgresGraphRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*GraphRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.FindByFingerprint")
	defer span.End()

	query := `
		SELECT id, name, fingerprint, vertex_count, edge_count, created_at
		FROM graphs
		WHERE fingerprint = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanRecord(r.db.QueryRow(ctx, query, fingerprint))
}

func (r *PostgresGraphRepository) scanRecord(row pgx.Row) (*GraphRecord, error) {
	rec := &GraphRecord{}
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Fingerprint,
		&rec.VertexCount,
		&rec.EdgeCount,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}
	return rec, nil
}

// LoadGraph восстанавливает граф. Рёбра вставляются в порядке сохранения.
func (r *PostgresGraphRepository) LoadGraph(ctx context.Context, id string) (*domain.Graph, *GraphRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.LoadGraph")
	defer span.End()

	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	query := `
		SELECT from_vertex, to_vertex, weight
		FROM graph_edges
		WHERE graph_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	g := domain.NewGraph(rec.VertexCount)
	g.Reserve(rec.VertexCount, rec.EdgeCount)
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.From, &e.To, &e.Weight); err != nil {
			return nil, nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
			return nil, nil, fmt.Errorf("stored edge %s: %w", e, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate edges: %w", err)
	}

	return g, rec, nil
}

func (r *PostgresGraphRepository) List(ctx context.Context, opts *ListOptions) ([]*GraphRecord, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.List")
	defer span.End()

	o := opts.normalize()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM graphs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count graphs: %w", err)
	}

	query := `
		SELECT id, name, fingerprint, vertex_count, edge_count, created_at
		FROM graphs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, o.Limit, o.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	var results []*GraphRecord
	for rows.Next() {
		rec := &GraphRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Fingerprint, &rec.VertexCount, &rec.EdgeCount, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan graph: %w", err)
		}
		results = append(results, rec)
	}

	return results, total, rows.Err()
}

// Delete удаляет граф. Рёбра удаляются каскадно, прогоны отвязываются.
func (r *PostgresGraphRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.Delete")
	defer span.End()

	result, err := r.db.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGraphNotFound
	}
	return nil
}

// SaveProfileRuns сохраняет журнал профилировщика через COPY.
// Пустой graphID сохраняет прогоны без привязки к графу.
func (r *PostgresGraphRepository) SaveProfileRuns(ctx context.Context, graphID string, records []profiling.Record) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.SaveProfileRuns")
	defer span.End()

	if len(records) == 0 {
		return 0, nil
	}

	graph := pgtype.Text{String: graphID, Valid: graphID != ""}
	rows := make([][]any, len(records))
	for i, rec := range records {
		var errText pgtype.Text
		if rec.Err != nil {
			errText = pgtype.Text{String: rec.Err.Error(), Valid: true}
		}
		rows[i] = []any{
			uuid.NewString(),
			graph,
			rec.Name,
			rec.Duration.Nanoseconds(),
			int64(rec.MemoryUsed),
			errText,
			rec.StartedAt,
		}
	}

	copied, err := r.db.CopyFrom(ctx, pgx.Identifier{"profile_runs"}, profileRunColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to save profile runs: %w", err)
	}
	return copied, nil
}

func (r *PostgresGraphRepository) ListProfileRuns(ctx context.Context, graphID string, opts *ListOptions) ([]*ProfileRun, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresGraphRepository.ListProfileRuns")
	defer span.End()

	o := opts.normalize()

	query := `
		SELECT id, graph_id, operation, duration_ns, memory_bytes, error, started_at
		FROM profile_runs
		WHERE graph_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, graphID, o.Limit, o.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile runs: %w", err)
	}
	defer rows.Close()

	var results []*ProfileRun
	for rows.Next() {
		run := &ProfileRun{}
		var (
			graph      pgtype.Text
			durationNs int64
			errText    pgtype.Text
		)
		if err := rows.Scan(&run.ID, &graph, &run.Operation, &durationNs, &run.MemoryBytes, &errText, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile run: %w", err)
		}
		run.GraphID = graph.String
		run.Duration = time.Duration(durationNs)
		run.Error = errText.String
		results = append(results, run)
	}

	return results, rows.Err()
}
