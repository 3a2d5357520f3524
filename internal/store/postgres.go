package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mendesarts/vox2you-import/internal/importer"
	"github.com/mendesarts/vox2you-import/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"load_mapping":      `SELECT header, target FROM import_mappings`,
	"save_mapping":      `INSERT INTO import_mappings (header, target) VALUES ($1, $2) ON CONFLICT (header) DO UPDATE SET target = EXCLUDED.target`,
	"load_custom":       `SELECT key FROM custom_fields ORDER BY key`,
	"save_custom":       `INSERT INTO custom_fields (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`,
	"list_users":        `SELECT id, name, unit_id FROM users ORDER BY id`,
	"list_units":        `SELECT id, name FROM units ORDER BY id`,
	"insert_lead":       `INSERT INTO leads (external_id, name, phone, email, stage, funnel, responsible_id, unit_id, sales_value, enrollment_value, material_value, tags, fields, extra, history, attempts, import_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
	"overwrite_lead":    `UPDATE leads SET name = $1, phone = $2, email = $3, stage = $4, funnel = $5, responsible_id = $6, sales_value = $7, enrollment_value = $8, material_value = $9, tags = $10, fields = $11, extra = $12, history = $13, attempts = $14, import_id = $15, updated_at = $16 WHERE id = $17`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               BIGSERIAL PRIMARY KEY,
	external_id      TEXT,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL,
	email            TEXT,
	stage            TEXT NOT NULL DEFAULT 'new',
	funnel           TEXT NOT NULL DEFAULT 'crm',
	responsible_id   BIGINT,
	unit_id          BIGINT,
	sales_value      DOUBLE PRECISION NOT NULL DEFAULT 0,
	enrollment_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	material_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
	tags             JSONB,
	fields           JSONB,
	extra            JSONB,
	history          JSONB,
	attempts         JSONB,
	import_id        TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_mappings (
	header TEXT PRIMARY KEY,
	target TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS custom_fields (
	key TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS users (
	id      BIGINT PRIMARY KEY,
	name    TEXT NOT NULL,
	unit_id BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS units (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_phone ON leads(phone);
CREATE INDEX IF NOT EXISTS idx_leads_external_id ON leads(external_id);
CREATE INDEX IF NOT EXISTS idx_leads_unit_id ON leads(unit_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) LoadMapping(ctx context.Context) (map[string]string, []string, error) {
	rows, err := s.pool.Query(ctx, "load_mapping")
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: load mapping")
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var header, target string
		if err := rows.Scan(&header, &target); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan mapping")
		}
		mapping[header] = target
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: iterate mapping")
	}
	rows.Close()

	fieldRows, err := s.pool.Query(ctx, "load_custom")
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: load custom fields")
	}
	defer fieldRows.Close()

	var customFields []string
	for fieldRows.Next() {
		var key string
		if err := fieldRows.Scan(&key); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan custom field")
		}
		customFields = append(customFields, key)
	}
	return mapping, customFields, eris.Wrap(fieldRows.Err(), "postgres: iterate custom fields")
}

func (s *PostgresStore) SaveMapping(ctx context.Context, mapping map[string]string, customFields []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save mapping")
	}
	defer tx.Rollback(ctx)

	for header, target := range mapping {
		if _, err := tx.Exec(ctx, "save_mapping", header, target); err != nil {
			return eris.Wrapf(err, "postgres: save mapping %q", header)
		}
	}
	for _, key := range customFields {
		if _, err := tx.Exec(ctx, "save_custom", key); err != nil {
			return eris.Wrapf(err, "postgres: save custom field %q", key)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit save mapping")
}

// ClearMapping drops the persisted header mapping and custom field keys.
func (s *PostgresStore) ClearMapping(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM import_mappings`); err != nil {
		return eris.Wrap(err, "postgres: clear mapping")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM custom_fields`)
	return eris.Wrap(err, "postgres: clear custom fields")
}

func (s *PostgresStore) FindDuplicates(ctx context.Context, phones, externalIDs []string, unitID int64) (model.DuplicateReport, error) {
	report := model.DuplicateReport{Duplicates: []model.DuplicateCandidate{}}

	searchPhones := phoneSearchSet(phones)
	if len(searchPhones) == 0 && len(externalIDs) == 0 {
		return report, nil
	}

	var conditions []string
	var args []any
	next := func() string {
		return "$" + strconv.Itoa(len(args))
	}

	if len(searchPhones) > 0 {
		var marks []string
		for _, p := range searchPhones {
			args = append(args, p)
			marks = append(marks, next())
		}
		cond := cleanPhoneExpr + ` IN (` + strings.Join(marks, ", ") + `)`
		if unitID != 0 {
			args = append(args, unitID)
			cond = `(` + cond + ` AND unit_id = ` + next() + `)`
		}
		conditions = append(conditions, cond)
	}
	if len(externalIDs) > 0 {
		var marks []string
		for _, id := range externalIDs {
			args = append(args, id)
			marks = append(marks, next())
		}
		conditions = append(conditions, `external_id IN (`+strings.Join(marks, ", ")+`)`)
	}

	query := `SELECT id, name, phone, COALESCE(external_id, '') FROM leads WHERE ` + strings.Join(conditions, " OR ")
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return report, eris.Wrap(err, "postgres: find duplicates")
	}
	defer rows.Close()

	externalIDSet := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		externalIDSet[id] = true
	}

	for rows.Next() {
		var c model.DuplicateCandidate
		if err := rows.Scan(&c.LeadID, &c.Name, &c.Phone, &c.ExternalID); err != nil {
			return report, eris.Wrap(err, "postgres: scan duplicate")
		}
		c.Reason = model.MatchPhone
		if c.ExternalID != "" && externalIDSet[c.ExternalID] {
			c.Reason = model.MatchExternalID
		}
		report.Duplicates = append(report.Duplicates, c)
	}
	report.Found = len(report.Duplicates)
	return report, eris.Wrap(rows.Err(), "postgres: iterate duplicates")
}

func (s *PostgresStore) CommitBatch(ctx context.Context, plan *importer.Plan) (importer.CommitResult, error) {
	var result importer.CommitResult

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, eris.Wrap(err, "postgres: begin commit")
	}
	defer tx.Rollback(ctx)

	for _, row := range plan.Rows {
		switch row.Action {
		case importer.ActionSkip:
			result.Ignored++
		case importer.ActionOverwrite:
			d := row.Draft
			tags, fields, extra, history, attempts, err := marshalDraft(d)
			if err != nil {
				return importer.CommitResult{}, err
			}
			if _, err := tx.Exec(ctx, "overwrite_lead",
				d.Name, d.Phone, d.Email, string(d.Stage), string(d.Funnel), d.ResponsibleID,
				d.SalesValue, d.EnrollmentValue, d.MaterialValue,
				tags, fields, extra, history, attempts, plan.ImportID, time.Now().UTC(), row.MatchedLeadID,
			); err != nil {
				return importer.CommitResult{}, eris.Wrapf(err, "postgres: overwrite lead %d", row.MatchedLeadID)
			}
			result.Updated++
		case importer.ActionCreate:
			d := row.Draft
			tags, fields, extra, history, attempts, err := marshalDraft(d)
			if err != nil {
				return importer.CommitResult{}, err
			}
			unitID := d.UnitID
			if unitID == 0 {
				unitID = plan.UnitID
			}
			if _, err := tx.Exec(ctx, "insert_lead",
				nullable(d.ExternalID), d.Name, d.Phone, d.Email, string(d.Stage), string(d.Funnel),
				d.ResponsibleID, unitID, d.SalesValue, d.EnrollmentValue, d.MaterialValue,
				tags, fields, extra, history, attempts, plan.ImportID, d.CreatedAt, time.Now().UTC(),
			); err != nil {
				return importer.CommitResult{}, eris.Wrapf(err, "postgres: insert lead %q", d.Name)
			}
			result.Created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return importer.CommitResult{}, eris.Wrap(err, "postgres: commit batch")
	}
	return result, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, "list_users")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.UnitID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: iterate users")
}

func (s *PostgresStore) ListUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := s.pool.Query(ctx, "list_units")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list units")
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan unit")
		}
		units = append(units, u)
	}
	return units, eris.Wrap(rows.Err(), "postgres: iterate units")
}
