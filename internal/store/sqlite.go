package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mendesarts/vox2you-import/internal/importer"
	"github.com/mendesarts/vox2you-import/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id      TEXT,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL,
	email            TEXT,
	stage            TEXT NOT NULL DEFAULT 'new',
	funnel           TEXT NOT NULL DEFAULT 'crm',
	responsible_id   INTEGER,
	unit_id          INTEGER,
	sales_value      REAL NOT NULL DEFAULT 0,
	enrollment_value REAL NOT NULL DEFAULT 0,
	material_value   REAL NOT NULL DEFAULT 0,
	tags             TEXT,
	fields           TEXT,
	extra            TEXT,
	history          TEXT,
	attempts         TEXT,
	import_id        TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_mappings (
	header TEXT PRIMARY KEY,
	target TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS custom_fields (
	key TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS users (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL,
	unit_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS units (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_phone ON leads(phone);
CREATE INDEX IF NOT EXISTS idx_leads_external_id ON leads(external_id);
CREATE INDEX IF NOT EXISTS idx_leads_unit_id ON leads(unit_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadMapping(ctx context.Context) (map[string]string, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT header, target FROM import_mappings`)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: load mapping")
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var header, target string
		if err := rows.Scan(&header, &target); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan mapping")
		}
		mapping[header] = target
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: iterate mapping")
	}

	fieldRows, err := s.db.QueryContext(ctx, `SELECT key FROM custom_fields ORDER BY key`)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: load custom fields")
	}
	defer fieldRows.Close()

	var customFields []string
	for fieldRows.Next() {
		var key string
		if err := fieldRows.Scan(&key); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan custom field")
		}
		customFields = append(customFields, key)
	}
	return mapping, customFields, eris.Wrap(fieldRows.Err(), "sqlite: iterate custom fields")
}

func (s *SQLiteStore) SaveMapping(ctx context.Context, mapping map[string]string, customFields []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save mapping")
	}
	defer tx.Rollback()

	for header, target := range mapping {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO import_mappings (header, target) VALUES (?, ?)
			 ON CONFLICT(header) DO UPDATE SET target = excluded.target`,
			header, target,
		); err != nil {
			return eris.Wrapf(err, "sqlite: save mapping %q", header)
		}
	}
	for _, key := range customFields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO custom_fields (key) VALUES (?) ON CONFLICT(key) DO NOTHING`, key,
		); err != nil {
			return eris.Wrapf(err, "sqlite: save custom field %q", key)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save mapping")
}

// ClearMapping drops the persisted header mapping and custom field keys.
func (s *SQLiteStore) ClearMapping(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM import_mappings`); err != nil {
		return eris.Wrap(err, "sqlite: clear mapping")
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM custom_fields`)
	return eris.Wrap(err, "sqlite: clear custom fields")
}

// cleanPhoneExpr normalizes the stored phone column the way the engine
// normalizes incoming phones, so formatting differences don't hide
// duplicates.
const cleanPhoneExpr = `replace(replace(replace(replace(phone, ' ', ''), '-', ''), '(', ''), ')', '')`

func (s *SQLiteStore) FindDuplicates(ctx context.Context, phones, externalIDs []string, unitID int64) (model.DuplicateReport, error) {
	report := model.DuplicateReport{Duplicates: []model.DuplicateCandidate{}}

	searchPhones := phoneSearchSet(phones)
	if len(searchPhones) == 0 && len(externalIDs) == 0 {
		return report, nil
	}

	var conditions []string
	var args []any
	if len(searchPhones) > 0 {
		cond := cleanPhoneExpr + ` IN (` + placeholders(len(searchPhones)) + `)`
		if unitID != 0 {
			cond = `(` + cond + ` AND unit_id = ?)`
		}
		conditions = append(conditions, cond)
		for _, p := range searchPhones {
			args = append(args, p)
		}
		if unitID != 0 {
			args = append(args, unitID)
		}
	}
	if len(externalIDs) > 0 {
		// External-id matches are global: the id is the absolute truth
		// regardless of unit.
		conditions = append(conditions, `external_id IN (`+placeholders(len(externalIDs))+`)`)
		for _, id := range externalIDs {
			args = append(args, id)
		}
	}

	query := `SELECT id, name, phone, COALESCE(external_id, '') FROM leads WHERE ` + strings.Join(conditions, " OR ")
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return report, eris.Wrap(err, "sqlite: find duplicates")
	}
	defer rows.Close()

	externalIDSet := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		externalIDSet[id] = true
	}

	for rows.Next() {
		var c model.DuplicateCandidate
		if err := rows.Scan(&c.LeadID, &c.Name, &c.Phone, &c.ExternalID); err != nil {
			return report, eris.Wrap(err, "sqlite: scan duplicate")
		}
		c.Reason = model.MatchPhone
		if c.ExternalID != "" && externalIDSet[c.ExternalID] {
			c.Reason = model.MatchExternalID
		}
		report.Duplicates = append(report.Duplicates, c)
	}
	report.Found = len(report.Duplicates)
	return report, eris.Wrap(rows.Err(), "sqlite: iterate duplicates")
}

func (s *SQLiteStore) CommitBatch(ctx context.Context, plan *importer.Plan) (importer.CommitResult, error) {
	var result importer.CommitResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, eris.Wrap(err, "sqlite: begin commit")
	}
	defer tx.Rollback()

	for _, row := range plan.Rows {
		switch row.Action {
		case importer.ActionSkip:
			result.Ignored++
		case importer.ActionOverwrite:
			if err := s.overwriteLead(ctx, tx, row, plan.ImportID); err != nil {
				return importer.CommitResult{}, err
			}
			result.Updated++
		case importer.ActionCreate:
			if err := s.insertLead(ctx, tx, row.Draft, plan); err != nil {
				return importer.CommitResult{}, err
			}
			result.Created++
		}
	}

	if err := tx.Commit(); err != nil {
		return importer.CommitResult{}, eris.Wrap(err, "sqlite: commit batch")
	}
	return result, nil
}

func (s *SQLiteStore) insertLead(ctx context.Context, tx *sql.Tx, d *model.LeadDraft, plan *importer.Plan) error {
	tags, fields, extra, history, attempts, err := marshalDraft(d)
	if err != nil {
		return err
	}
	unitID := d.UnitID
	if unitID == 0 {
		unitID = plan.UnitID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO leads (external_id, name, phone, email, stage, funnel, responsible_id, unit_id,
		                    sales_value, enrollment_value, material_value, tags, fields, extra, history, attempts,
		                    import_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(d.ExternalID), d.Name, d.Phone, d.Email, string(d.Stage), string(d.Funnel),
		d.ResponsibleID, unitID, d.SalesValue, d.EnrollmentValue, d.MaterialValue,
		tags, fields, extra, history, attempts, plan.ImportID, d.CreatedAt, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert lead %q", d.Name)
}

func (s *SQLiteStore) overwriteLead(ctx context.Context, tx *sql.Tx, row importer.PlannedRow, importID string) error {
	d := row.Draft
	tags, fields, extra, history, attempts, err := marshalDraft(d)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE leads SET name = ?, phone = ?, email = ?, stage = ?, funnel = ?, responsible_id = ?,
		                  sales_value = ?, enrollment_value = ?, material_value = ?,
		                  tags = ?, fields = ?, extra = ?, history = ?, attempts = ?,
		                  import_id = ?, updated_at = ?
		 WHERE id = ?`,
		d.Name, d.Phone, d.Email, string(d.Stage), string(d.Funnel), d.ResponsibleID,
		d.SalesValue, d.EnrollmentValue, d.MaterialValue,
		tags, fields, extra, history, attempts, importID, time.Now().UTC(), row.MatchedLeadID,
	)
	return eris.Wrapf(err, "sqlite: overwrite lead %d", row.MatchedLeadID)
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, unit_id FROM users ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.UnitID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: iterate users")
}

func (s *SQLiteStore) ListUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM units ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list units")
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan unit")
		}
		units = append(units, u)
	}
	return units, eris.Wrap(rows.Err(), "sqlite: iterate units")
}

// SeedReference inserts users and units, for tests and local bootstrap.
func (s *SQLiteStore) SeedReference(ctx context.Context, users []model.User, units []model.Unit) error {
	for _, u := range users {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, name, unit_id) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			u.ID, u.Name, u.UnitID,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed user %d", u.ID)
		}
	}
	for _, u := range units {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO units (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
			u.ID, u.Name,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed unit %d", u.ID)
		}
	}
	return nil
}

func marshalDraft(d *model.LeadDraft) (tags, fields, extra, history, attempts string, err error) {
	enc := func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", eris.Wrap(err, "store: marshal draft")
		}
		return string(b), nil
	}
	if tags, err = enc(d.Tags); err != nil {
		return
	}
	if fields, err = enc(d.Fields); err != nil {
		return
	}
	if extra, err = enc(d.Extra); err != nil {
		return
	}
	if history, err = enc(d.History); err != nil {
		return
	}
	attempts, err = enc(d.Attempts)
	return
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
