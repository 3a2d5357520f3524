package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendesarts/vox2you-import/internal/importer"
	"github.com/mendesarts/vox2you-import/internal/model"
)

// anyArgs returns n pgxmock.AnyArg matchers; pgxmock requires the expected
// argument count to match even when the values are not being asserted.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresLoadMapping(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("load_mapping").WillReturnRows(
		pgxmock.NewRows([]string{"header", "target"}).
			AddRow("Celular", "phone").
			AddRow("Etapa do lead", "status"),
	)
	mock.ExpectQuery("load_custom").WillReturnRows(
		pgxmock.NewRows([]string{"key"}).AddRow("coluna_alfa"),
	)

	mapping, custom, err := s.LoadMapping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "phone", mapping["Celular"])
	assert.Equal(t, "status", mapping["Etapa do lead"])
	assert.Equal(t, []string{"coluna_alfa"}, custom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveMapping(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("save_mapping").WithArgs("Celular", "phone").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("save_custom").WithArgs("coluna_alfa").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveMapping(context.Background(), map[string]string{"Celular": "phone"}, []string{"coluna_alfa"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindDuplicates(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, phone").WithArgs(anyArgs(3)...).WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "phone", "external_id"}).
			AddRow(int64(9), "Ana Silva", "61999990000", ""),
	)

	report, err := s.FindDuplicates(context.Background(), []string{"61999990000"}, nil, 7)
	require.NoError(t, err)
	require.Equal(t, 1, report.Found)
	assert.Equal(t, int64(9), report.Duplicates[0].LeadID)
	assert.Equal(t, model.MatchPhone, report.Duplicates[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindDuplicatesEmptyKeysSkipsQuery(t *testing.T) {
	s, mock := newMockStore(t)

	report, err := s.FindDuplicates(context.Background(), nil, nil, 7)
	require.NoError(t, err)
	assert.Zero(t, report.Found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitBatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("insert_lead").WithArgs(anyArgs(19)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("overwrite_lead").WithArgs(anyArgs(17)...).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	plan := &importer.Plan{
		ImportID: "imp-1",
		UnitID:   7,
		Rows: []importer.PlannedRow{
			{Draft: draft("Ana Silva", "61999990000"), Action: importer.ActionCreate},
			{Draft: draft("Bruno Costa", "61988887777"), Action: importer.ActionOverwrite, MatchedLeadID: 4},
			{Draft: draft("Carla Souza", "61977776666"), Action: importer.ActionSkip, MatchedLeadID: 5},
		},
	}
	result, err := s.CommitBatch(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Ignored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitBatchRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("insert_lead").WithArgs(anyArgs(19)...).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	plan := &importer.Plan{
		ImportID: "imp-1",
		UnitID:   7,
		Rows:     []importer.PlannedRow{{Draft: draft("Ana Silva", "61999990000"), Action: importer.ActionCreate}},
	}
	_, err := s.CommitBatch(context.Background(), plan)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListUsers(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("list_users").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "unit_id"}).
			AddRow(int64(1), "Paula Mendes", int64(7)),
	)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Paula Mendes", users[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
