package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "1450.00 RON", Money{Amount: 145000, Currency: "RON"}.String())
	assert.Equal(t, "-0.05 EUR", Money{Amount: -5, Currency: "EUR"}.String())
	assert.Equal(t, int64(300), Money{Amount: 100}.Times(3).Amount)
}

func TestProduct_Coalesce(t *testing.T) {
	p := &Product{
		Handle: "x",
		Title:  map[string]string{"ro": "Panou", "en": ""},
		Tags:   []string{"panels"},
	}
	assert.Equal(t, "Panou", p.LocalizedTitle("en"))
	assert.Equal(t, "Panou", p.LocalizedTitle("ro"))
	assert.Equal(t, []string{"product:x", "panels"}, p.CacheTags())
	_, ok := p.Price("de")
	assert.False(t, ok)
}

const seed = `
products:
  - handle: ecoline-poly-330w
    position: 2
    title: {ro: "Panou EcoLine Poly 330W", en: "EcoLine Poly 330W Panel"}
    prices:
      ro: {amount: 95000, currency: RON}
  - position: 1
    title: {ro: "Panou SunPower Mono 400W"}
    prices:
      ro: {amount: 145000, currency: RON}
      de: {amount: 29000, currency: EUR}
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	m, err := LoadYAML(path)
	require.NoError(t, err)

	ps, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "panou-sunpower-mono-400w", ps[0].Handle, "handle derived from ro title, position 1 first")

	p, err := m.Get(context.Background(), "ecoline-poly-330w")
	require.NoError(t, err)
	price, ok := p.Price("ro")
	require.True(t, ok)
	assert.Equal(t, "950.00 RON", price.String())

	_, err = m.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewMemory_DuplicateHandle(t *testing.T) {
	_, err := NewMemory([]*Product{{Handle: "a"}, {Handle: "a"}})
	assert.Error(t, err)
}

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestSQLRepository_List(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(productQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "position", "image", "tags"}).
			AddRow("b", 2, "", "panels").
			AddRow("a", 1, "/images/a.png", "panels, mono"))
	mock.ExpectQuery(regexp.QuoteMeta(textQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "locale", "title", "description"}).
			AddRow("a", "ro", "Panou A", "Descriere").
			AddRow("a", "en", "Panel A", "Description").
			AddRow("ghost", "ro", "x", "y"))
	mock.ExpectQuery(regexp.QuoteMeta(priceQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "region", "amount", "currency"}).
			AddRow("a", "ro", 145000, "RON"))

	ps, err := NewSQL(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "a", ps[0].Handle)
	assert.Equal(t, []string{"panels", "mono"}, ps[0].Tags)
	assert.Equal(t, "Panel A", ps[0].LocalizedTitle("en"))
	assert.Equal(t, int64(145000), ps[0].Prices["ro"].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_GetNotFound(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(productQuery + ` WHERE handle = ?`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"handle", "position", "image", "tags"}))

	_, err := NewSQL(db).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRepository_Get(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(productQuery + ` WHERE handle = ?`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"handle", "position", "image", "tags"}).AddRow("a", 1, "", ""))
	mock.ExpectQuery(regexp.QuoteMeta(textQuery + ` WHERE handle = ?`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"handle", "locale", "title", "description"}).AddRow("a", "ro", "Panou", ""))
	mock.ExpectQuery(regexp.QuoteMeta(priceQuery + ` WHERE handle = ?`)).
		WithArgs("a").
		WillReturnError(errors.New("connection reset"))

	_, err := NewSQL(db).Get(context.Background(), "a")
	assert.ErrorContains(t, err, "connection reset")
}
