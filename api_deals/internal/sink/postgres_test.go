package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSink(db), mock
}

func TestPostgresSinkEnsureSchema(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(schemaSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkPersistReplacesTable(t *testing.T) {
	s, mock := newMock(t)
	ds := sampleDeals()
	dup := ds[0]
	dup.Title = "Same link and discount, different title"
	ds = append(ds, dup)

	mock.ExpectBegin()
	mock.ExpectExec(deleteDealsSQL).WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(insertDealSQL)
	prep.ExpectExec().
		WithArgs(ds[0].ContentHash(), 0, ds[0].Title, ds[0].Link, "Target", "Udi's", "Food", 8, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(ds[1].ContentHash(), 1, ds[1].Title, ds[1].Link, "Walmart", "Walmart", "General", 4, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Persist(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, Result{Deleted: 5, Inserted: 2}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkPersistRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(deleteDealsSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(insertDealSQL).ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.Persist(context.Background(), sampleDeals())
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkLoad(t *testing.T) {
	s, mock := newMock(t)
	ds := sampleDeals()

	rows := sqlmock.NewRows([]string{"deal"})
	for _, d := range ds {
		raw, err := json.Marshal(d)
		require.NoError(t, err)
		rows.AddRow(raw)
	}
	mock.ExpectQuery(selectDealsSQL).WillReturnRows(rows)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, ds, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkLoadRejectsBadJSON(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(selectDealsSQL).WillReturnRows(sqlmock.NewRows([]string{"deal"}).AddRow([]byte("{")))

	_, err := s.Load(context.Background())
	require.ErrorContains(t, err, "decode deal")
}
