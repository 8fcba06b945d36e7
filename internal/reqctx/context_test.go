package reqctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_BindsFreshContextPerRequest(t *testing.T) {
	var seen []*RequestContext
	h := Init(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())
		require.NotNil(t, rc)
		AddTags(r.Context(), "home")
		seen = append(seen, rc)
	}))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ro/", nil))
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	assert.Equal(t, []string{"home"}, seen[0].Tags.List())
	assert.Nil(t, seen[0].Exec)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	AddTags(context.Background(), "ignored") // must not panic
}

func TestTagSet_OrderAndDedup(t *testing.T) {
	s := NewTagSet()
	s.Add("product:a", " products ", "", "product:a")
	s.Add("products", "faqs")
	assert.Equal(t, []string{"product:a", "products", "faqs"}, s.List())
	assert.Equal(t, 3, s.Len())
}

func TestJar_SetVisibleToGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "region", Value: "de"})
	rec := httptest.NewRecorder()
	j := NewJar(rec, req)

	v, ok := j.Get("region")
	assert.True(t, ok)
	assert.Equal(t, "de", v)
	assert.True(t, j.Has("region"))

	j.Set(&http.Cookie{Name: "region", Value: "fr", Path: "/"})
	v, _ = j.Get("region")
	assert.Equal(t, "fr", v)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "region=fr")

	_, ok = j.Get("missing")
	assert.False(t, ok)
}
