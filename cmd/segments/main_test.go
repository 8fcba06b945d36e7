package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/routing"
)

func defaults() (*config.Config, error) { return config.Defaults(), nil }

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(defaults, open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mockOpener(t *testing.T) (opener, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	return func(context.Context, string) (*sqlx.DB, error) { return db, nil }, mock
}

func TestMissingDSNFailsFast(t *testing.T) {
	_, err := run(t, func(context.Context, string) (*sqlx.DB, error) {
		t.Fatal("open called without a DSN")
		return nil, nil
	}, "list")
	assert.ErrorIs(t, err, errNoDSN)
}

func TestList(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(`SELECT canonical, locale, localized FROM route_segment ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"canonical", "locale", "localized"}).
			AddRow("blog", "ro", "jurnal"))
	mock.ExpectClose()

	out, err := run(t, open, "--dsn", "u:p@/db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CANONICAL")
	assert.Contains(t, out, "jurnal")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Validates(t *testing.T) {
	open, _ := mockOpener(t)
	_, err := run(t, open, "--dsn", "x", "upsert", "blog", "de", "blog")
	assert.ErrorContains(t, err, "unsupported locale")

	open, _ = mockOpener(t)
	_, err = run(t, open, "--dsn", "x", "upsert", "blog", "ro", "Jurnal Nou")
	assert.ErrorContains(t, err, `try "jurnal-nou"`)
}

func TestUpsert(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectExec(`INSERT INTO route_segment`).
		WithArgs("blog", "ro", "jurnal").
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := run(t, open, "--dsn", "x", "upsert", "blog", "ro", "jurnal")
	require.NoError(t, err)
	assert.Contains(t, out, "blog/ro → jurnal")
}

func TestSeed(t *testing.T) {
	open, mock := mockOpener(t)
	rows := staticRows(config.Defaults().I18n.Segments)
	for _, r := range rows {
		mock.ExpectExec(`INSERT INTO route_segment`).
			WithArgs(r.Canonical, r.Locale, r.Localized).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	out, err := run(t, open, "--dsn", "x", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 10 rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaticRows_Sorted(t *testing.T) {
	rows := staticRows(map[string]map[string]string{
		"products": {"ro": "produse", "en": "products"},
		"faqs":     {"ro": "intrebari"},
	})
	assert.Equal(t, []routing.SegmentRow{
		{Canonical: "faqs", Locale: "ro", Localized: "intrebari"},
		{Canonical: "products", Locale: "en", Localized: "products"},
		{Canonical: "products", Locale: "ro", Localized: "produse"},
	}, rows)
}
