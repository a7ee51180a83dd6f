package store

import (
	"sync"
	"time"
)

// Blacklist holds the append-only mint and dev/authority ban sets. Entries
// never expire for the process lifetime; membership in either set
// disqualifies all future signals for that mint or dev across all
// strategies.
//
// Devs blacklisted by a stop-loss or supply screen are additionally marked
// "recently rugged" for a bounded window, which the Consensus policy screens
// against separately.
type Blacklist struct {
	mu     sync.RWMutex
	mints  map[string]struct{}
	devs   map[string]struct{}
	rugged map[string]time.Time

	ruggedWindow time.Duration
	now          func() time.Time
}

// NewBlacklist creates empty ban sets. ruggedWindow bounds the
// recently-rugged dev screen; zero disables it.
func NewBlacklist(ruggedWindow time.Duration) *Blacklist {
	return &Blacklist{
		mints:        make(map[string]struct{}),
		devs:         make(map[string]struct{}),
		rugged:       make(map[string]time.Time),
		ruggedWindow: ruggedWindow,
		now:          time.Now,
	}
}

// AddMint permanently bans a mint.
func (bl *Blacklist) AddMint(mint string) {
	if mint == "" {
		return
	}
	bl.mu.Lock()
	bl.mints[mint] = struct{}{}
	bl.mu.Unlock()
}

// AddDev permanently bans a dev/authority and marks it recently rugged.
func (bl *Blacklist) AddDev(dev string) {
	if dev == "" {
		return
	}
	bl.mu.Lock()
	bl.devs[dev] = struct{}{}
	bl.rugged[dev] = bl.now()
	bl.mu.Unlock()
}

// Banned reports whether the mint, or its dev when known, is blacklisted.
func (bl *Blacklist) Banned(mint, dev string) bool {
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	if _, ok := bl.mints[mint]; ok {
		return true
	}
	if dev != "" {
		if _, ok := bl.devs[dev]; ok {
			return true
		}
	}
	return false
}

// RecentlyRugged reports whether dev was blacklisted within the configured
// window.
func (bl *Blacklist) RecentlyRugged(dev string) bool {
	if dev == "" || bl.ruggedWindow <= 0 {
		return false
	}
	bl.mu.RLock()
	defer bl.mu.RUnlock()
	t, ok := bl.rugged[dev]
	return ok && bl.now().Sub(t) <= bl.ruggedWindow
}
