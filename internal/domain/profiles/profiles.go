// Package profiles tracks the dynamic list of user profiles whose counts
// feed the totals computation and are validated against the client headcount.
package profiles

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// Notifier is the external totals collaborator, invoked synchronously after
// every profile-count change.
type Notifier func()

// Profile is one named group of users with a headcount.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Enabled bool   `json:"enabled"`
}

// ConsistencyReport compares the enabled-profile sum with the client
// headcount. The mismatch is advisory; callers render it, nothing rejects it.
type ConsistencyReport struct {
	EnabledProfiles int  `json:"enabled_profiles"`
	Sum             int  `json:"sum"`
	Headcount       int  `json:"headcount"`
	Consistent      bool `json:"consistent"`
}

// Registry owns the profile list. Mutations notify the totals collaborator.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Profile

	notify Notifier
	log    logger.Logger
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		byID: make(map[string]*Profile),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		r.log = logger.Get().Named("profiles")
	}

	return r
}

// Add creates an enabled profile and returns it.
func (r *Registry) Add(ctx context.Context, name string, count int) Profile {
	p := &Profile{
		ID:      uuid.NewString(),
		Name:    name,
		Count:   count,
		Enabled: true,
	}

	r.mu.Lock()
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	r.mu.Unlock()

	r.log.Debug(ctx, "profile added", logger.String("name", name), logger.Int("count", count))
	r.notifyTotals()
	return *p
}

// Remove deletes a profile.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	delete(r.byID, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.notifyTotals()
	return nil
}

// SetCount updates a profile's user count.
func (r *Registry) SetCount(ctx context.Context, id string, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidCount)
	}

	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	p.Count = count
	r.mu.Unlock()

	r.notifyTotals()
	return nil
}

// SetEnabled includes or excludes a profile from the totals.
func (r *Registry) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	p.Enabled = enabled
	r.mu.Unlock()

	r.notifyTotals()
	return nil
}

// List returns all profiles in insertion order.
func (r *Registry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// CheckConsistency sums the enabled profiles against a client headcount.
// With no enabled profiles or no known headcount there is nothing to
// validate and the report is consistent.
func (r *Registry) CheckConsistency(headcount int) ConsistencyReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep := ConsistencyReport{Headcount: headcount}
	for _, p := range r.byID {
		if p.Enabled {
			rep.EnabledProfiles++
			rep.Sum += p.Count
		}
	}
	rep.Consistent = rep.EnabledProfiles == 0 || headcount <= 0 || rep.Sum == headcount
	return rep
}

// Size returns the number of profiles.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) notifyTotals() {
	if r.notify != nil {
		r.notify()
		metrics.RecordTotalsNotification()
	}
}
