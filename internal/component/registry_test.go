package component

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	name string
	path string
	ddl  []string
}

func (s stub) Name() string         { return s.name }
func (s stub) Migrations() []string { return s.ddl }
func (s stub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get(s.path, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(s.name)) })
	return r
}

func TestRegistry(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(stub{name: "a", path: "/", ddl: []string{"CREATE TABLE a (id INT)"}})
	Register(stub{name: "b", path: "/x"})
	Register(stub{name: "a", path: "/y", ddl: []string{"CREATE TABLE a (id INT)"}})

	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name())

	r := chi.NewRouter()
	Mount(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b/x", nil))
	assert.Equal(t, "b", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/y", nil))
	assert.Equal(t, "a", rec.Body.String(), "re-registration replaces the router")
}

func TestMigrate(t *testing.T) {
	reset()
	t.Cleanup(reset)
	Register(stub{name: "apply", path: "/", ddl: []string{"CREATE TABLE application (id INT)"}})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE application`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))

	mock.ExpectExec(`CREATE TABLE application`).WillReturnError(errors.New("denied"))
	assert.ErrorContains(t, Migrate(context.Background(), db), "migrate apply #0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
