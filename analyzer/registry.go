package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"chat-analyzer/cache"

	"github.com/rs/zerolog/log"
)

const keyPrefix = "workspace:"

// Registry keeps one Controller per browser session, keyed by its bearer
// token. Idle workspaces expire with the cache TTL.
type Registry struct {
	cache  *cache.Cache
	client Analyzer
	mu     sync.Mutex
}

func NewRegistry(c *cache.Cache, client Analyzer) *Registry {
	return &Registry{cache: c, client: client}
}

// For returns the session's controller, creating an empty one on first use.
func (r *Registry) For(token string) *Controller {
	key := workspaceKey(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(key); ok {
		if ctrl, ok := v.(*Controller); ok {
			return ctrl
		}
	}

	ctrl := NewController(r.client)
	if !r.cache.Set(key, ctrl, ctrl.Footprint()) {
		log.Warn().Msg("Workspace cache rejected a new session workspace")
	}
	r.cache.Wait()
	return ctrl
}

// Touch refreshes the workspace TTL and its cost after the upload changed.
func (r *Registry) Touch(token string, ctrl *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Touch(workspaceKey(token), ctrl, ctrl.Footprint())
}

// Drop forgets the session's workspace, typically on logout.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(workspaceKey(token))
}

func (r *Registry) Metrics() cache.MetricsSnapshot {
	return r.cache.GetMetricsSnapshot()
}

// workspaceKey avoids keeping raw bearer tokens as cache keys.
func workspaceKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
