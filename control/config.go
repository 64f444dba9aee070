// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with snapshot reads and reload listeners.

package control

import (
	"maps"
	"slices"
	"sync"
)

// ConfigStore is a dynamic key/value map with snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func(snapshot map[string]any)
}

// NewConfigStore initializes a store seeded with initial (may be nil).
func NewConfigStore(initial map[string]any) *ConfigStore {
	cs := &ConfigStore{config: make(map[string]any, len(initial))}
	maps.Copy(cs.config, initial)
	return cs
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return maps.Clone(cs.config)
}

// Get returns a single value.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// GetInt returns key as an int, or def when missing or not numeric.
func (cs *ConfigStore) GetInt(key string, def int) int {
	v, ok := cs.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// SetConfig merges new values and notifies listeners asynchronously.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	snap, listeners := cs.merge(newCfg)
	for _, fn := range listeners {
		go fn(maps.Clone(snap))
	}
}

// SetConfigSync merges new values and notifies listeners before returning.
func (cs *ConfigStore) SetConfigSync(newCfg map[string]any) {
	snap, listeners := cs.merge(newCfg)
	for _, fn := range listeners {
		fn(maps.Clone(snap))
	}
}

// OnReload registers a listener called with a snapshot after each change.
func (cs *ConfigStore) OnReload(fn func(snapshot map[string]any)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

func (cs *ConfigStore) merge(newCfg map[string]any) (map[string]any, []func(map[string]any)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	maps.Copy(cs.config, newCfg)
	return maps.Clone(cs.config), slices.Clone(cs.listeners)
}
