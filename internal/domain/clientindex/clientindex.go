// Package clientindex builds the normalized client lookup structure and
// answers exact and approximate queries against it.
package clientindex

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tlibouban/deploycheck/internal/domain/model"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// Client dataset column layout. The header row is ignored by the loader;
// rows with fewer than minColumns fields are dropped.
const (
	colNumero = iota
	colName
	colKind
	colERP
	colHeadcount
	colRoleFirst
)

const (
	minColumns  = 3
	keyPadWidth = 4
)

// colDepartment follows the ten role-headcount columns.
const colDepartment = colRoleFirst + 10

// Match is the outcome of a combined lookup: the record (nil when nothing
// matched) and whether the match was exact.
type Match struct {
	Record *model.ClientRecord `json:"record"`
	Key    string              `json:"matched_key"`
	Exact  bool                `json:"exact"`
}

// Suggestion is one autocompletion candidate for a client-name query.
type Suggestion struct {
	Name    string   `json:"name"`
	Numeros []string `json:"numeros"`
}

// cached is the write-once query-cache entry. A nil record means the query
// is known to have no result.
type cached struct {
	record *model.ClientRecord
	key    string
	exact  bool
}

// Index owns the key→record mapping, the per-session query cache, and the
// name-side structures used for suggestions. Only Load mutates it.
type Index struct {
	mu      sync.RWMutex
	byKey   map[string]*model.ClientRecord
	keys    []string              // indexed keys in insertion order
	records []*model.ClientRecord // records in insertion order
	byName  map[string][]string   // client name -> file numbers
	names   []string              // sorted client names
	cache   *gocache.Cache
	loaded  bool
	dropped int

	log logger.Logger
}

// New constructs an empty index.
func New(opts ...Option) *Index {
	x := &Index{
		byKey:  make(map[string]*model.ClientRecord),
		byName: make(map[string][]string),
		cache:  gocache.New(gocache.NoExpiration, 0),
	}

	for _, opt := range opts {
		opt(x)
	}

	if x.log == nil {
		x.log = logger.Get().Named("clientindex")
	}

	return x
}

// Load parses tabular rows into client records and builds the lookup keys.
// Calling it again re-initializes the index, clearing prior state and the
// query cache.
func (x *Index) Load(ctx context.Context, rows [][]string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.byKey = make(map[string]*model.ClientRecord)
	x.keys = nil
	x.records = nil
	x.byName = make(map[string][]string)
	x.names = nil
	x.cache = gocache.New(gocache.NoExpiration, 0)
	x.dropped = 0

	for _, row := range rows {
		rec, ok := x.parseRow(ctx, row)
		if !ok {
			x.dropped++
			metrics.RecordMalformedRow()
			continue
		}

		x.records = append(x.records, rec)
		x.indexKey(rec.Numero, rec)
		for _, alias := range aliasKeys(rec.Numero) {
			x.indexKey(alias, rec)
		}

		x.byName[rec.Name] = append(x.byName[rec.Name], rec.Numero)
	}

	x.names = make([]string, 0, len(x.byName))
	for name := range x.byName {
		x.names = append(x.names, name)
	}
	sort.Strings(x.names)

	x.loaded = true
	metrics.UpdateIndexedClients(len(x.records))
	x.log.Info(ctx, "client index loaded",
		logger.Int("records", len(x.records)),
		logger.Int("keys", len(x.keys)),
		logger.Int("dropped", x.dropped),
	)
}

// parseRow turns one tabular row into a record. Rows missing the identifier,
// name, or kind columns are rejected.
func (x *Index) parseRow(ctx context.Context, row []string) (*model.ClientRecord, bool) {
	if len(row) < minColumns {
		return nil, false
	}

	numero := strings.TrimSpace(row[colNumero])
	name := strings.TrimSpace(row[colName])
	if numero == "" || name == "" {
		return nil, false
	}

	rec := &model.ClientRecord{
		Numero:         numero,
		Name:           name,
		Kind:           model.ParseKind(row[colKind]),
		RoleHeadcounts: make(map[string]int),
	}
	if len(row) > colERP {
		rec.ERP = strings.TrimSpace(row[colERP])
	}
	if len(row) > colHeadcount {
		rec.Headcount = atoi(row[colHeadcount])
	}
	for i, role := range model.Roles() {
		col := colRoleFirst + i
		if len(row) > col {
			rec.RoleHeadcounts[role] = atoi(row[col])
		}
	}
	if len(row) > colDepartment {
		rec.Department = strings.TrimSpace(row[colDepartment])
	}

	if sum := rec.RoleSum(); rec.Headcount > 0 && sum > 0 && sum != rec.Headcount {
		x.log.Warn(ctx, "role headcounts do not sum to headcount",
			logger.String("numero", rec.Numero),
			logger.Int("headcount", rec.Headcount),
			logger.Int("role_sum", sum),
		)
	}

	return rec, true
}

// indexKey registers key→rec, keeping the first-insertion position when a
// key is indexed twice.
func (x *Index) indexKey(key string, rec *model.ClientRecord) {
	if _, exists := x.byKey[key]; !exists {
		x.keys = append(x.keys, key)
	}
	x.byKey[key] = rec
}

// aliasKeys computes the derived lookup keys for a raw identifier: the
// zero-left-padded form (width 4) when the key is shorter, and the
// zero-stripped form (empty normalizes to "0") when it differs.
func aliasKeys(key string) []string {
	var aliases []string
	if len(key) < keyPadWidth {
		aliases = append(aliases, strings.Repeat("0", keyPadWidth-len(key))+key)
	}
	stripped := strings.TrimLeft(key, "0")
	if stripped == "" {
		stripped = "0"
	}
	if stripped != key {
		aliases = append(aliases, stripped)
	}
	return aliases
}

// FindExact looks up a client by raw key only. The query cache is consulted
// first; a positive result is cached under the trimmed query.
func (x *Index) FindExact(ctx context.Context, query string) *model.ClientRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.loaded {
		x.log.Warn(ctx, "lookup on unloaded index", logger.String("query", query))
		return nil
	}

	if v, hit := x.cache.Get(query); hit {
		metrics.RecordLookupCacheHit()
		c := v.(cached)
		if c.exact {
			return c.record
		}
		// A cached non-exact entry means an earlier exact lookup already failed.
		return nil
	}

	rec, ok := x.byKey[query]
	if !ok {
		return nil
	}
	_ = x.cache.Add(query, cached{record: rec, key: query, exact: true}, gocache.NoExpiration)
	metrics.RecordLookupExact()
	return rec
}

// FindApproximate scans all indexed keys, in insertion order, for the first
// key that contains the query as a substring or is contained by it. It is
// meant to be invoked only after FindExact failed; the first-match policy is
// a deliberate imprecision inherited from the form's behavior.
func (x *Index) FindApproximate(ctx context.Context, query string) (*model.ClientRecord, string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ""
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.loaded {
		x.log.Warn(ctx, "lookup on unloaded index", logger.String("query", query))
		return nil, ""
	}

	for _, key := range x.keys {
		if strings.Contains(key, query) || strings.Contains(query, key) {
			rec := x.byKey[key]
			_ = x.cache.Add(query, cached{record: rec, key: key, exact: false}, gocache.NoExpiration)
			metrics.RecordLookupApproximate()
			return rec, key
		}
	}
	return nil, ""
}

// Lookup is the combined query surface: cache, then exact, then approximate.
// The final outcome, including a miss, is cached once per raw query string.
func (x *Index) Lookup(ctx context.Context, raw string) (Match, bool) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return Match{}, false
	}

	x.mu.RLock()
	if !x.loaded {
		x.mu.RUnlock()
		x.log.Warn(ctx, "lookup on unloaded index", logger.String("query", query))
		return Match{}, false
	}
	if v, hit := x.cache.Get(query); hit {
		x.mu.RUnlock()
		metrics.RecordLookupCacheHit()
		c := v.(cached)
		if c.record == nil {
			return Match{}, false
		}
		return Match{Record: c.record, Key: c.key, Exact: c.exact}, true
	}
	x.mu.RUnlock()

	if rec := x.FindExact(ctx, query); rec != nil {
		return Match{Record: rec, Key: query, Exact: true}, true
	}
	if rec, key := x.FindApproximate(ctx, query); rec != nil {
		return Match{Record: rec, Key: key, Exact: false}, true
	}

	_ = x.cache.Add(query, cached{}, gocache.NoExpiration)
	metrics.RecordLookupMiss()
	return Match{}, false
}

// FindByName returns the first record, in insertion order, whose stored name
// contains the query or is contained by it, case-insensitively.
func (x *Index) FindByName(ctx context.Context, name string) *model.ClientRecord {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.loaded {
		x.log.Warn(ctx, "lookup on unloaded index", logger.String("query", name))
		return nil
	}

	for _, rec := range x.records {
		stored := strings.ToLower(rec.Name)
		if strings.Contains(stored, query) || strings.Contains(query, stored) {
			return rec
		}
	}
	return nil
}

// Suggest returns up to max autocompletion candidates for a client-name
// query: prefix matches first, then containment matches. Queries shorter
// than two runes yield nothing.
func (x *Index) Suggest(ctx context.Context, query string, max int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < 2 || max <= 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.loaded {
		return nil
	}

	var out []Suggestion
	seen := make(map[string]bool)

	for _, name := range x.names {
		if strings.HasPrefix(strings.ToLower(name), q) {
			out = append(out, Suggestion{Name: name, Numeros: x.byName[name]})
			seen[name] = true
			if len(out) >= max {
				return out
			}
		}
	}
	for _, name := range x.names {
		if seen[name] {
			continue
		}
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, Suggestion{Name: name, Numeros: x.byName[name]})
			if len(out) >= max {
				return out
			}
		}
	}
	return out
}

// Loaded reports whether Load has completed.
func (x *Index) Loaded() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.loaded
}

// Size returns the number of client records.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// KeyCount returns the number of indexed keys, aliases included.
func (x *Index) KeyCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.keys)
}

// CacheSize returns the number of cached query results.
func (x *Index) CacheSize() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.cache.ItemCount()
}

// DroppedRows returns the number of rows rejected during the last Load.
func (x *Index) DroppedRows() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dropped
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
