package manager

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"tessera-hq/meridian/pkg/scope"
)

// ScopeRegistry is a thread-safe in-memory store for loaded scopes, keyed by
// scope id. It maintains a per-bot assignment index so the resolver can fetch
// the active scope set for a bot in one call.
//
// The registry hands out deep copies. Mutating a returned scope never affects
// the registered one, and atomic Replace swaps never tear reads in flight.
type ScopeRegistry struct {
	mu       sync.RWMutex
	scopes   map[string]*scope.Scope
	bots     map[string]map[string]bool // bot id -> set of scope ids
	version  string
	loadTime time.Time
}

// NewScopeRegistry creates a new empty scope registry.
func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{
		scopes:   make(map[string]*scope.Scope),
		bots:     make(map[string]map[string]bool),
		loadTime: time.Now(),
	}
}

// Register adds a scope to the registry.
// If a scope with the same id already exists, it will be replaced.
func (r *ScopeRegistry) Register(s *scope.Scope) error {
	if s == nil {
		return &RegistryError{
			Operation: "register",
			Message:   "scope cannot be nil",
		}
	}
	if s.ID == "" {
		return &RegistryError{
			Operation: "register",
			Message:   "scope id cannot be empty",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeFromBotIndexLocked(s.ID)
	r.scopes[s.ID] = s.Clone()
	r.indexBotsLocked(s)
	r.updateVersionLocked()

	return nil
}

// Unregister removes a scope from the registry by id.
func (r *ScopeRegistry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[id]; !ok {
		return &RegistryError{
			ScopeID:   id,
			Operation: "unregister",
			Message:   "scope not found",
		}
	}

	delete(r.scopes, id)
	r.removeFromBotIndexLocked(id)
	r.updateVersionLocked()

	return nil
}

// Get retrieves a scope by id. The returned scope is a deep copy.
func (r *ScopeRegistry) Get(id string) (*scope.Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scopes[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// GetAll retrieves deep copies of all scopes, sorted by id.
func (r *ScopeRegistry) GetAll() []*scope.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedClonesLocked(nil)
}

// AssignBot adds a scope to a bot's assignment set. The scope must already
// be registered.
func (r *ScopeRegistry) AssignBot(botID, scopeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[scopeID]; !ok {
		return &RegistryError{
			ScopeID:   scopeID,
			Operation: "assign_bot",
			Message:   fmt.Sprintf("scope not found for bot %q", botID),
		}
	}

	if r.bots[botID] == nil {
		r.bots[botID] = make(map[string]bool)
	}
	r.bots[botID][scopeID] = true

	return nil
}

// UnassignBot removes a scope from a bot's assignment set.
func (r *ScopeRegistry) UnassignBot(botID, scopeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.bots[botID]; ok {
		delete(set, scopeID)
		if len(set) == 0 {
			delete(r.bots, botID)
		}
	}
}

// ScopesForBot retrieves deep copies of all scopes assigned to a bot,
// sorted by id. Inactive scopes are included; the resolver skips them.
func (r *ScopeRegistry) ScopesForBot(botID string) []*scope.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.bots[botID]
	if len(set) == 0 {
		return nil
	}
	return r.sortedClonesLocked(set)
}

// ActiveScopesForBot retrieves deep copies of the active scopes assigned to
// a bot, sorted by id. This is the input the policy resolver expects.
func (r *ScopeRegistry) ActiveScopesForBot(botID string) []*scope.Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.bots[botID]
	if len(set) == 0 {
		return nil
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		if s, ok := r.scopes[id]; ok && s.Active {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	scopes := make([]*scope.Scope, 0, len(ids))
	for _, id := range ids {
		scopes = append(scopes, r.scopes[id].Clone())
	}
	return scopes
}

// Bots returns a sorted list of all bot ids with at least one assignment.
func (r *ScopeRegistry) Bots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.bots))
	for id := range r.bots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of scopes in the registry.
func (r *ScopeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.scopes)
}

// Clear removes all scopes and bot assignments from the registry.
func (r *ScopeRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scopes = make(map[string]*scope.Scope)
	r.bots = make(map[string]map[string]bool)
	r.updateVersionLocked()
}

// Replace atomically replaces the entire scope set with a new set and
// rebuilds the bot assignment index from the scopes' own assignments.
// This is used for atomic hot-reload operations.
func (r *ScopeRegistry) Replace(scopes []*scope.Scope) error {
	if scopes == nil {
		return &RegistryError{
			Operation: "replace",
			Message:   "scopes cannot be nil",
		}
	}

	for _, s := range scopes {
		if s == nil {
			return &RegistryError{
				Operation: "replace",
				Message:   "scope cannot be nil",
			}
		}
		if s.ID == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "scope id cannot be empty",
			}
		}
	}

	newScopes := make(map[string]*scope.Scope, len(scopes))
	newBots := make(map[string]map[string]bool)
	for _, s := range scopes {
		clone := s.Clone()
		newScopes[clone.ID] = clone
		for _, botID := range clone.Bots {
			if botID == "" {
				continue
			}
			if newBots[botID] == nil {
				newBots[botID] = make(map[string]bool)
			}
			newBots[botID][clone.ID] = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.scopes = newScopes
	r.bots = newBots
	r.loadTime = time.Now()
	r.updateVersionLocked()

	return nil
}

// GetVersion returns the current version of the registry.
// The version changes whenever scopes are added, removed, or replaced.
func (r *ScopeRegistry) GetVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// GetLoadTime returns the timestamp when scopes were last loaded or updated.
func (r *ScopeRegistry) GetLoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// HasScope checks if a scope with the given id exists in the registry.
func (r *ScopeRegistry) HasScope(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.scopes[id]
	return ok
}

// GetScopeIDs returns a sorted list of all scope ids in the registry.
func (r *ScopeRegistry) GetScopeIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetStats returns statistics about the scopes in the registry.
func (r *ScopeRegistry) GetStats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		ScopeCount: len(r.scopes),
		BotCount:   len(r.bots),
		LoadTime:   r.loadTime,
		Version:    r.version,
	}

	for _, s := range r.scopes {
		if s.Active {
			stats.ActiveScopes++
		}
	}

	return stats
}

// sortedClonesLocked returns deep copies sorted by id. When filter is
// non-nil, only scopes whose id is in the filter set are returned.
// Callers must hold at least the read lock.
func (r *ScopeRegistry) sortedClonesLocked(filter map[string]bool) []*scope.Scope {
	ids := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		if filter != nil && !filter[id] {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	scopes := make([]*scope.Scope, 0, len(ids))
	for _, id := range ids {
		scopes = append(scopes, r.scopes[id].Clone())
	}
	return scopes
}

// indexBotsLocked adds a scope's bot assignments to the index.
// Callers must hold the write lock.
func (r *ScopeRegistry) indexBotsLocked(s *scope.Scope) {
	for _, botID := range s.Bots {
		if botID == "" {
			continue
		}
		if r.bots[botID] == nil {
			r.bots[botID] = make(map[string]bool)
		}
		r.bots[botID][s.ID] = true
	}
}

// removeFromBotIndexLocked drops a scope id from every bot's assignment set.
// Callers must hold the write lock.
func (r *ScopeRegistry) removeFromBotIndexLocked(scopeID string) {
	for botID, set := range r.bots {
		delete(set, scopeID)
		if len(set) == 0 {
			delete(r.bots, botID)
		}
	}
}

// updateVersionLocked updates the registry version based on the current
// state. This should be called with the write lock held.
func (r *ScopeRegistry) updateVersionLocked() {
	h := sha256.New()

	ids := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := r.scopes[id]
		h.Write([]byte(s.ID))
		h.Write([]byte(strconv.FormatInt(s.Updated.UnixNano(), 10)))
		h.Write([]byte(s.SourceFile))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// RegistryStats contains statistics about the scope registry.
type RegistryStats struct {
	ScopeCount   int
	ActiveScopes int
	BotCount     int
	LoadTime     time.Time
	Version      string
}
