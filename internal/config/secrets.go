// internal/config/secrets.go
//
// Vault reference resolution.
//
// Context
// -------
// Operators keep credentials (Redis password, purge token, database DSN)
// out of YAML by writing a reference instead of the value:
//
//	cache:
//	  redis_password: "vault:kv/storefront#redis_password"
//
// `resolveSecrets` walks the merged Koanf tree, and for every string with
// the `vault:` prefix fetches `<mount>/<path>#<key>` through a
// SecretGetter, then overwrites the key in place.  The Vault client is
// only constructed when at least one reference exists, so development
// machines without VAULT_ADDR never touch Vault.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package config

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/vault"
)

// secretTTL is how long a resolved secret is cached by the Vault client.
const secretTTL = 10 * time.Minute

// SecretGetter is the subset of *vault.Client the loader needs.
type SecretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// resolveSecrets replaces every `vault:` reference in k.  newGetter is
// called lazily, at most once.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, newGetter func() (SecretGetter, error)) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vault.RefPrefix) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	sort.Strings(refs)

	getter, err := newGetter()
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	for _, key := range refs {
		path, field, err := vault.ParseRef(k.String(key))
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		val, err := getter.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}

// vaultGetter builds the production SecretGetter.
func vaultGetter(ctx context.Context) func() (SecretGetter, error) {
	return func() (SecretGetter, error) {
		return vault.New(ctx, zap.S().Infof)
	}
}
