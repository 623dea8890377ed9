package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/kanade-dev/extrepo/internal/db/sqlc"
	"github.com/kanade-dev/extrepo/internal/otel"
	"github.com/kanade-dev/extrepo/internal/repo"
)

// StoreTracerName is the name used for the database store tracer
const StoreTracerName = "github.com/kanade-dev/extrepo/storage"

const (
	uniqueViolation        = "23505"
	fingerprintConstraint  = "extension_repos_signing_key_fingerprint_key"
	postgresStoreSpanScope = "storage.postgres."
)

// PostgresStore keeps repositories in the extension_repos table
type PostgresStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Store = (*PostgresStore)(nil)

// PostgresOption configures a PostgresStore
type PostgresOption func(*PostgresStore)

// WithTracer enables spans around every query
func WithTracer(tracer trace.Tracer) PostgresOption {
	return func(s *PostgresStore) {
		s.tracer = tracer
	}
}

// NewPostgresStore creates a store over pool. The store owns the pool and closes it on Close.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every repository ordered by base URL
func (s *PostgresStore) List(ctx context.Context) ([]repo.ExtensionRepo, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"List")
	defer span.End()

	rows, err := sqlc.New(s.pool).ListExtensionRepos(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	repos := make([]repo.ExtensionRepo, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, fromRow(row))
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(repos)))
	return repos, nil
}

// Get returns the repository with baseURL
func (s *PostgresStore) Get(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Get",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(baseURL)))
	defer span.End()

	row, err := sqlc.New(s.pool).GetExtensionRepo(ctx, baseURL)
	return s.single(span, row, err)
}

// GetByFingerprint returns the repository using fingerprint
func (s *PostgresStore) GetByFingerprint(ctx context.Context, fingerprint string) (*repo.ExtensionRepo, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"GetByFingerprint",
		trace.WithAttributes(otel.AttrRepoFingerprint.String(fingerprint)))
	defer span.End()

	row, err := sqlc.New(s.pool).GetExtensionRepoByFingerprint(ctx, fingerprint)
	return s.single(span, row, err)
}

// Insert adds a new repository
func (s *PostgresStore) Insert(ctx context.Context, r repo.ExtensionRepo) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Insert",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(r.BaseURL)))
	defer span.End()

	err := sqlc.New(s.pool).InsertExtensionRepo(ctx, sqlc.InsertExtensionRepoParams(toRow(r)))
	if err != nil {
		otel.RecordError(span, err)
		return wrapWriteError(r.BaseURL, "insert", err)
	}
	return nil
}

// Upsert inserts r or overwrites the record with the same base URL
func (s *PostgresStore) Upsert(ctx context.Context, r repo.ExtensionRepo) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Upsert",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(r.BaseURL)))
	defer span.End()

	err := sqlc.New(s.pool).UpsertExtensionRepo(ctx, sqlc.UpsertExtensionRepoParams(toRow(r)))
	if err != nil {
		otel.RecordError(span, err)
		return wrapWriteError(r.BaseURL, "upsert", err)
	}
	return nil
}

// Replace removes the record holding r's fingerprint and writes r in one transaction
func (s *PostgresStore) Replace(ctx context.Context, r repo.ExtensionRepo) (err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Replace",
		trace.WithAttributes(
			otel.AttrRepoBaseURL.String(r.BaseURL),
			otel.AttrRepoFingerprint.String(r.SigningKeyFingerprint),
		))
	defer span.End()
	defer func() { otel.RecordError(span, err) }()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := sqlc.New(s.pool).WithTx(tx)
	if err := q.DeleteExtensionRepoByFingerprint(ctx, r.SigningKeyFingerprint); err != nil {
		return fmt.Errorf("failed to remove repository with fingerprint %s: %w", r.SigningKeyFingerprint, err)
	}
	if err := q.UpsertExtensionRepo(ctx, sqlc.UpsertExtensionRepoParams(toRow(r))); err != nil {
		return wrapWriteError(r.BaseURL, "replace", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the repository with baseURL
func (s *PostgresStore) Delete(ctx context.Context, baseURL string) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Delete",
		trace.WithAttributes(otel.AttrRepoBaseURL.String(baseURL)))
	defer span.End()

	if err := sqlc.New(s.pool).DeleteExtensionRepo(ctx, baseURL); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete repository %s: %w", baseURL, err)
	}
	return nil
}

// Count returns the number of stored repositories
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, postgresStoreSpanScope+"Count")
	defer span.End()

	count, err := sqlc.New(s.pool).CountExtensionRepos(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return int(count), nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (*PostgresStore) single(span trace.Span, row sqlc.ExtensionRepo, err error) (*repo.ExtensionRepo, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrRepoNotFound
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	r := fromRow(row)
	return &r, nil
}

// wrapWriteError turns unique violations into SaveRepoErrors
func wrapWriteError(baseURL, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		cause := ErrDuplicateBaseURL
		if pgErr.ConstraintName == fingerprintConstraint {
			cause = ErrDuplicateFingerprint
		}
		return repo.NewSaveRepoError(baseURL, fmt.Errorf("%w: %w", cause, err))
	}
	return fmt.Errorf("failed to %s repository %s: %w", op, baseURL, err)
}

type repoRow struct {
	BaseUrl               string
	Name                  string
	ShortName             *string
	Website               string
	SigningKeyFingerprint string
}

func toRow(r repo.ExtensionRepo) repoRow {
	return repoRow{
		BaseUrl:               r.BaseURL,
		Name:                  r.Name,
		ShortName:             r.ShortName,
		Website:               r.Website,
		SigningKeyFingerprint: r.SigningKeyFingerprint,
	}
}

func fromRow(row sqlc.ExtensionRepo) repo.ExtensionRepo {
	return repo.ExtensionRepo{
		BaseURL:               row.BaseUrl,
		Name:                  row.Name,
		ShortName:             row.ShortName,
		Website:               row.Website,
		SigningKeyFingerprint: row.SigningKeyFingerprint,
	}
}
