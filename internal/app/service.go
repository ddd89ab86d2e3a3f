// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tlibouban/deploycheck/internal/adapters/dataset"
	"github.com/tlibouban/deploycheck/internal/domain/assignment"
	"github.com/tlibouban/deploycheck/internal/domain/clientindex"
	"github.com/tlibouban/deploycheck/internal/domain/model"
	"github.com/tlibouban/deploycheck/internal/domain/profiles"
	"github.com/tlibouban/deploycheck/internal/domain/toggle"
	"github.com/tlibouban/deploycheck/internal/domain/trainerdir"
	"github.com/tlibouban/deploycheck/pkg/logger"
)

// Defaults used when no option overrides them.
const (
	defaultLookupDebounce  = 500 * time.Millisecond
	defaultSuggestDebounce = 300 * time.Millisecond
	defaultMaxSuggestions  = 8
)

// DatasetLoader abstracts the dataset reads so the load path can be
// exercised without touching the filesystem.
type DatasetLoader interface {
	LoadClientRows(ctx context.Context, path string) ([][]string, error)
	LoadRoster(ctx context.Context, path string) ([]trainerdir.ZoneEntry, error)
}

// Service owns the client index, trainer directory, assignment resolver,
// feature toggles and profile registry, and exposes the operations the HTTP
// layer depends on.
type Service struct {
	mu sync.RWMutex

	// Core components
	clients  *clientindex.Index
	trainers *trainerdir.Directory
	resolver *assignment.Resolver
	toggles  *toggle.Engine
	registry *profiles.Registry
	loader   DatasetLoader

	// Debounced query scheduling
	lookupDebouncer  *Debouncer
	suggestDebouncer *Debouncer
	lookupDebounce   time.Duration
	suggestDebounce  time.Duration

	// Configuration
	clientDatasetPath string
	trainerRosterPath string
	defaultSpecialty  string
	zoneGroups        map[string][]string
	maxSuggestions    int
	notify            func()

	// Load coalescing
	clientsLoading atomic.Bool
	rosterLoading  atomic.Bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClientDataset sets the path of the tab-separated client export loaded
// on Start.
func WithClientDataset(path string) Option {
	return func(s *Service) {
		s.clientDatasetPath = path
	}
}

// WithTrainerRoster sets the path of the trainer roster JSON loaded on Start.
func WithTrainerRoster(path string) Option {
	return func(s *Service) {
		s.trainerRosterPath = path
	}
}

// WithDefaultSpecialty sets the fallback specialty for unknown product codes.
func WithDefaultSpecialty(specialty string) Option {
	return func(s *Service) {
		if specialty != "" {
			s.defaultSpecialty = specialty
		}
	}
}

// WithZoneGroups sets the adjacency groups used for proximity scoring.
func WithZoneGroups(groups map[string][]string) Option {
	return func(s *Service) {
		if len(groups) > 0 {
			s.zoneGroups = groups
		}
	}
}

// WithMaxSuggestions caps the suggestion list size.
func WithMaxSuggestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithDebounceWindows sets the quiescence windows for scheduled lookups and
// suggestions.
func WithDebounceWindows(lookup, suggest time.Duration) Option {
	return func(s *Service) {
		if lookup >= 0 {
			s.lookupDebounce = lookup
		}
		if suggest >= 0 {
			s.suggestDebounce = suggest
		}
	}
}

// WithTotalsNotifier sets the collaborator invoked synchronously after every
// toggle cycle and profile mutation.
func WithTotalsNotifier(fn func()) Option {
	return func(s *Service) {
		s.notify = fn
	}
}

// WithDatasetLoader replaces the filesystem loader.
func WithDatasetLoader(l DatasetLoader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultSpecialty: trainerdir.DefaultSpecialty,
		maxSuggestions:   defaultMaxSuggestions,
		lookupDebounce:   defaultLookupDebounce,
		suggestDebounce:  defaultSuggestDebounce,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components and loads any configured
// datasets. A failed dataset load is logged and the service degrades to the
// not-loaded behavior instead of failing hard.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting deployment checklist service...")

	if s.loader == nil {
		s.loader = dataset.NewLoader(dataset.WithLogger(s.logger.Named("dataset")))
	}
	s.clients = clientindex.New(clientindex.WithLogger(s.logger.Named("clientindex")))
	s.trainers = trainerdir.New(
		trainerdir.WithDefaultSpecialty(s.defaultSpecialty),
		trainerdir.WithLogger(s.logger.Named("trainerdir")),
	)
	s.resolver = assignment.New(s.trainers,
		assignment.WithZoneGroups(s.zoneGroups),
		assignment.WithLogger(s.logger.Named("assignment")),
	)
	s.toggles = toggle.NewEngine(
		toggle.WithNotifier(s.notify),
		toggle.WithLogger(s.logger.Named("toggle")),
	)
	s.registry = profiles.New(
		profiles.WithNotifier(s.notify),
		profiles.WithLogger(s.logger.Named("profiles")),
	)
	s.lookupDebouncer = NewDebouncer(s.lookupDebounce)
	s.suggestDebouncer = NewDebouncer(s.suggestDebounce)

	s.started = true
	s.mu.Unlock()

	if s.clientDatasetPath != "" {
		if err := s.LoadClients(ctx); err != nil {
			s.logger.Warn(ctx, "client dataset unavailable",
				logger.String("path", s.clientDatasetPath),
				logger.Error(err))
		}
	}
	if s.trainerRosterPath != "" {
		if err := s.LoadRoster(ctx); err != nil {
			s.logger.Warn(ctx, "trainer roster unavailable",
				logger.String("path", s.trainerRosterPath),
				logger.Error(err))
		}
	}

	s.logger.Info(ctx, "deployment checklist service started",
		logger.Int("clients", s.clients.Size()),
		logger.Int("rosterZones", s.trainers.ZoneCount()),
	)
	return nil
}

// Stop shuts the service down, dropping any pending debounced queries.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping deployment checklist service...")

	s.lookupDebouncer.Cancel()
	s.suggestDebouncer.Cancel()

	s.started = false
	s.logger.Info(context.Background(), "deployment checklist service stopped")
}

// ready reports whether Start has completed. Operations on a not-started
// service degrade to their zero outcome instead of panicking.
func (s *Service) ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// LoadClients reads the client dataset and replaces the index contents.
// Concurrent calls coalesce: while one load is in flight the others are
// no-ops.
func (s *Service) LoadClients(ctx context.Context) error {
	if !s.ready() {
		return ErrNotStarted
	}
	if !s.clientsLoading.CompareAndSwap(false, true) {
		s.logger.Debug(ctx, "client dataset load already in progress")
		return nil
	}
	defer s.clientsLoading.Store(false)

	rows, err := s.loader.LoadClientRows(ctx, s.clientDatasetPath)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	s.clients.Load(ctx, rows)
	return nil
}

// LoadRoster reads the trainer roster and replaces the directory contents.
// Concurrent calls coalesce the same way LoadClients does.
func (s *Service) LoadRoster(ctx context.Context) error {
	if !s.ready() {
		return ErrNotStarted
	}
	if !s.rosterLoading.CompareAndSwap(false, true) {
		s.logger.Debug(ctx, "trainer roster load already in progress")
		return nil
	}
	defer s.rosterLoading.Store(false)

	zones, err := s.loader.LoadRoster(ctx, s.trainerRosterPath)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	s.trainers.Load(ctx, zones)
	return nil
}

// Lookup resolves a client number immediately, bypassing the debounce
// window. Any pending scheduled lookup is dropped first.
func (s *Service) Lookup(ctx context.Context, query string) (clientindex.Match, bool) {
	if !s.ready() {
		return clientindex.Match{}, false
	}
	s.lookupDebouncer.Cancel()
	return s.clients.Lookup(ctx, query)
}

// ScheduleLookup runs fn with the lookup result after the quiescence window
// elapses without another keystroke. A newer call replaces the pending one.
func (s *Service) ScheduleLookup(ctx context.Context, query string, fn func(clientindex.Match, bool)) {
	if !s.ready() {
		return
	}
	s.lookupDebouncer.Schedule(func() {
		m, ok := s.clients.Lookup(ctx, query)
		fn(m, ok)
	})
}

// CommitLookup drops any pending scheduled lookup, then resolves query
// immediately. This is the loss-of-focus / explicit-confirm path: the
// superseded keystroke's search never runs.
func (s *Service) CommitLookup(ctx context.Context, query string) (clientindex.Match, bool) {
	if !s.ready() {
		return clientindex.Match{}, false
	}
	s.lookupDebouncer.Cancel()
	return s.clients.Lookup(ctx, query)
}

// Suggest returns name suggestions for a partial query.
func (s *Service) Suggest(ctx context.Context, query string) []clientindex.Suggestion {
	if !s.ready() {
		return nil
	}
	return s.clients.Suggest(ctx, query, s.maxSuggestions)
}

// ScheduleSuggest runs fn with the suggestions after the suggestion window
// elapses without another keystroke.
func (s *Service) ScheduleSuggest(ctx context.Context, query string, fn func([]clientindex.Suggestion)) {
	if !s.ready() {
		return
	}
	s.suggestDebouncer.Schedule(func() {
		fn(s.clients.Suggest(ctx, query, s.maxSuggestions))
	})
}

// FindByName resolves a client by display name containment.
func (s *Service) FindByName(ctx context.Context, name string) *model.ClientRecord {
	if !s.ready() {
		return nil
	}
	return s.clients.FindByName(ctx, name)
}

// ResolveAssignment looks the client up by number and ranks trainers for the
// product and training mode. An unresolvable client yields a structured
// failure result, not an error.
func (s *Service) ResolveAssignment(ctx context.Context, clientQuery, productCode, mode string) assignment.Result {
	if !s.ready() {
		return assignment.Result{}
	}
	var client *model.ClientRecord
	if m, ok := s.clients.Lookup(ctx, clientQuery); ok {
		client = m.Record
	}
	return s.resolver.Resolve(ctx, client, productCode, model.ParseTrainingMode(mode))
}

// RegisterToggle adds a toggle, generating an id when none is given.
func (s *Service) RegisterToggle(id string) string {
	if !s.ready() {
		return ""
	}
	return s.toggles.Register(id)
}

// CycleToggle advances a toggle through the transition of the given kind.
func (s *Service) CycleToggle(ctx context.Context, id, kind string) (toggle.State, error) {
	if !s.ready() {
		return "", ErrNotStarted
	}
	k, err := toggle.ParseKind(kind)
	if err != nil {
		return "", err
	}
	return s.toggles.Cycle(ctx, id, k)
}

// ToggleCounters returns the current per-state totals.
func (s *Service) ToggleCounters() toggle.Counters {
	if !s.ready() {
		return toggle.Counters{}
	}
	return s.toggles.Counters()
}

// ToggleState returns one toggle's state.
func (s *Service) ToggleState(id string) (toggle.State, bool) {
	if !s.ready() {
		return "", false
	}
	return s.toggles.State(id)
}

// SetToggleFilter restricts visibility to one state; the empty string
// clears the filter. Counters are unaffected either way.
func (s *Service) SetToggleFilter(state string) error {
	if !s.ready() {
		return ErrNotStarted
	}
	if state == "" {
		s.toggles.SetFilter(nil)
		return nil
	}
	st, err := toggle.ParseState(state)
	if err != nil {
		return err
	}
	s.toggles.SetFilter(&st)
	return nil
}

// ToggleVisible reports whether a toggle passes the current filter.
func (s *Service) ToggleVisible(id string) bool {
	if !s.ready() {
		return false
	}
	return s.toggles.Visible(id)
}

// AddProfile creates an enabled user profile.
func (s *Service) AddProfile(ctx context.Context, name string, count int) profiles.Profile {
	if !s.ready() {
		return profiles.Profile{}
	}
	return s.registry.Add(ctx, name, count)
}

// RemoveProfile deletes a profile.
func (s *Service) RemoveProfile(ctx context.Context, id string) error {
	if !s.ready() {
		return ErrNotStarted
	}
	return s.registry.Remove(ctx, id)
}

// SetProfileCount updates a profile's user count.
func (s *Service) SetProfileCount(ctx context.Context, id string, count int) error {
	if !s.ready() {
		return ErrNotStarted
	}
	return s.registry.SetCount(ctx, id, count)
}

// SetProfileEnabled includes or excludes a profile from the totals.
func (s *Service) SetProfileEnabled(ctx context.Context, id string, enabled bool) error {
	if !s.ready() {
		return ErrNotStarted
	}
	return s.registry.SetEnabled(ctx, id, enabled)
}

// ListProfiles returns all profiles in insertion order.
func (s *Service) ListProfiles() []profiles.Profile {
	if !s.ready() {
		return nil
	}
	return s.registry.List()
}

// CheckProfileConsistency compares the enabled-profile sum with a headcount.
func (s *Service) CheckProfileConsistency(headcount int) profiles.ConsistencyReport {
	if !s.ready() {
		return profiles.ConsistencyReport{}
	}
	return s.registry.CheckConsistency(headcount)
}

// Stats is a point-in-time snapshot of the service for monitoring. The
// dataset and roster fields are zero until Start has run.
type Stats struct {
	Started        bool            `json:"started"`
	MaxSuggestions int             `json:"max_suggestions"`
	ClientsLoaded  bool            `json:"clients_loaded"`
	Clients        int             `json:"clients"`
	ClientKeys     int             `json:"client_keys"`
	DroppedRows    int             `json:"dropped_rows"`
	QueryCache     int             `json:"query_cache"`
	RosterLoaded   bool            `json:"roster_loaded"`
	RosterZones    int             `json:"roster_zones"`
	Toggles        int             `json:"toggles"`
	ToggleCounters toggle.Counters `json:"toggle_counters"`
	Profiles       int             `json:"profiles"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:        s.started,
		MaxSuggestions: s.maxSuggestions,
	}

	if s.started {
		stats.ClientsLoaded = s.clients.Loaded()
		stats.Clients = s.clients.Size()
		stats.ClientKeys = s.clients.KeyCount()
		stats.DroppedRows = s.clients.DroppedRows()
		stats.QueryCache = s.clients.CacheSize()
		stats.RosterLoaded = s.trainers.Loaded()
		stats.RosterZones = s.trainers.ZoneCount()
		stats.Toggles = s.toggles.Size()
		stats.ToggleCounters = s.toggles.Counters()
		stats.Profiles = s.registry.Size()
	}

	return stats
}
