package edgecache

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/metrics"
)

// PurgeRequest is the body of POST /api/cache/purge.  Keys are full cache
// keys as produced by Key.
type PurgeRequest struct {
	Tags []string `json:"tags"`
	Keys []string `json:"keys"`
}

// PurgeHandler evicts entries by tag or key.  Callers authenticate with
// "Authorization: Bearer {token}".  An empty token or a nil store disables
// the endpoint (404).
func PurgeHandler(store Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" || store == nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req PurgeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		tags := SplitTags(req.Tags...)
		if len(tags) == 0 && len(req.Keys) == 0 {
			http.Error(w, "tags or keys required", http.StatusBadRequest)
			return
		}

		n, err := store.PurgeTags(r.Context(), tags)
		if err == nil {
			var k int
			k, err = store.PurgeKeys(r.Context(), req.Keys)
			n += k
		}
		metrics.EdgeCachePurged.Add(float64(n))
		if err != nil {
			zap.L().Error("edge cache purge", zap.Strings("tags", tags), zap.Error(err))
			http.Error(w, "purge failed", http.StatusBadGateway)
			return
		}
		zap.L().Info("edge cache purged",
			zap.Strings("tags", tags),
			zap.Int("keys", len(req.Keys)),
			zap.Int("removed", n))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"purged": n})
	})
}
