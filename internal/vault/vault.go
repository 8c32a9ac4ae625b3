// internal/vault/vault.go
//
// Secret references for the intake config.
//
// Context
// -------
//   - Config fields may hold `vault:<mount/path>#<key>` instead of a literal
//     secret.  Client.Resolve turns such a reference into the stored value
//     by reading a KV-v2 secret.
//   - Values are cached per path#key for RefTTL, so a secret shared by
//     several fields costs one read.
//   - The token from VAULT_TOKEN is kept alive in the background until the
//     boot context ends.
//
// Boot
// ----
//
//	vc, err := vault.New(ctx, log)
//	err = cfg.ResolveSecrets(ctx, vc)
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// RefTTL is how long a resolved reference stays cached.
const RefTTL = 5 * time.Minute

// kvReader reads the data map of one KV-v2 secret.
type kvReader interface {
	Read(ctx context.Context, mount, rel string) (map[string]any, error)
}

type apiReader struct{ api *vault.Client }

func (r apiReader) Read(ctx context.Context, mount, rel string) (map[string]any, error) {
	sec, err := r.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}

// Client resolves vault references.  Safe for concurrent use.
type Client struct {
	kv  kvReader
	log *zap.SugaredLogger
	now func() time.Time

	mu    sync.Mutex
	cache map[string]entry // path#key
}

type entry struct {
	val string
	exp time.Time
}

// New reads VAULT_ADDR and VAULT_TOKEN and starts token renewal bound to
// ctx.  log may be nil.
func New(ctx context.Context, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.S()
	}
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}
	if api.Token() == "" {
		return nil, errors.New("vault: no token (set VAULT_TOKEN)")
	}

	go keepTokenAlive(ctx, api, log)
	return newClient(apiReader{api}, log), nil
}

func newClient(kv kvReader, log *zap.SugaredLogger) *Client {
	return &Client{kv: kv, log: log, now: time.Now, cache: make(map[string]entry)}
}

// ParseRef splits `vault:secret/intake#db_password` into its KV path and key.
func ParseRef(ref string) (path, key string, err error) {
	rest, ok := strings.CutPrefix(ref, "vault:")
	if !ok {
		return "", "", fmt.Errorf("vault ref %q: missing vault: prefix", ref)
	}
	path, key, ok = strings.Cut(rest, "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("vault ref %q: want vault:<path>#<key>", ref)
	}
	if mount, rel := splitMount(path); mount == "" || rel == "" {
		return "", "", fmt.Errorf("vault ref %q: path needs a mount and a secret", ref)
	}
	return path, key, nil
}

// Resolve fetches the string value behind ref.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	id := path + "#" + key

	c.mu.Lock()
	e, ok := c.cache[id]
	c.mu.Unlock()
	if ok && c.now().Before(e.exp) {
		return e.val, nil
	}

	mount, rel := splitMount(path)
	data, err := c.kv.Read(ctx, mount, rel)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q missing in %s", key, path)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: %s is %T, want string", id, raw)
	}

	c.mu.Lock()
	c.cache[id] = entry{val: val, exp: c.now().Add(RefTTL)}
	c.mu.Unlock()
	c.log.Debugw("vault ref resolved", "path", path, "key", key)
	return val, nil
}

// keepTokenAlive renews the client token until ctx ends.  A non-renewable
// token is left alone.
func keepTokenAlive(ctx context.Context, api *vault.Client, log *zap.SugaredLogger) {
	for ctx.Err() == nil {
		sec, err := api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			log.Warnw("vault token renew failed", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			log.Infow("vault token not renewable")
			return
		}

		w, err := api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			log.Warnw("vault lifetime watcher", "err", err)
			sleep(ctx, 30*time.Second)
			continue
		}
		go w.Start()
		watch(ctx, w, log)
		w.Stop()
		sleep(ctx, 15*time.Second)
	}
}

func watch(ctx context.Context, w *vault.LifetimeWatcher, log *zap.SugaredLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				log.Warnw("vault token renewal stopped", "err", err)
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				log.Debugw("vault token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
