// Package trainerdir indexes the trainer roster by zone and specialty.
package trainerdir

import (
	"context"
	"strings"
	"sync"

	"github.com/tlibouban/deploycheck/internal/domain/model"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// DefaultSpecialty is assigned to product codes outside the canonical set.
// This is a policy choice, not a data fact; callers must treat the result
// as approximate.
const DefaultSpecialty = "NEO"

// baseSpecialties are the canonical base-product codes that map to
// themselves.
var baseSpecialties = map[string]bool{
	"AIR":    true,
	"NEO":    true,
	"ADAPPS": true,
}

// ZoneEntry is one element of the hierarchical roster resource: a zone
// label, a department, and the trainer sub-entries attached to it.
type ZoneEntry struct {
	Zone       string         `json:"zone"`
	Department string         `json:"department"`
	Trainers   []TrainerEntry `json:"trainers"`
}

// TrainerEntry is one raw trainer sub-entry before deduplication.
type TrainerEntry struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
}

// Directory owns the department→zone map and the lazily built
// specialty→trainer index. Only Load mutates it.
type Directory struct {
	mu          sync.RWMutex
	zones       []ZoneEntry
	zoneByDept  map[string]string
	bySpecialty map[string][]*model.TrainerRecord // built on demand
	loaded      bool

	defaultSpecialty string
	log              logger.Logger
}

// New constructs an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		zoneByDept:       make(map[string]string),
		defaultSpecialty: DefaultSpecialty,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.log == nil {
		d.log = logger.Get().Named("trainerdir")
	}

	return d
}

// Load flattens the zone entries and builds the department→zone map. The
// specialty index is invalidated and rebuilt on the next query.
func (d *Directory) Load(ctx context.Context, zones []ZoneEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.zones = zones
	d.zoneByDept = make(map[string]string, len(zones))
	d.bySpecialty = nil

	trainers := 0
	for _, z := range zones {
		d.zoneByDept[z.Department] = z.Zone
		trainers += len(z.Trainers)
	}

	d.loaded = true
	d.log.Info(ctx, "trainer roster loaded",
		logger.Int("zones", len(zones)),
		logger.Int("entries", trainers),
	)
}

// SpecialtyFor normalizes a product code and maps it to the required
// trainer specialty. Canonical base products pass through unchanged; any
// other non-empty code maps to the default specialty. An empty code yields
// an empty specialty.
func (d *Directory) SpecialtyFor(productCode string) string {
	code := strings.ToUpper(strings.TrimSpace(productCode))
	if code == "" {
		return ""
	}
	if baseSpecialties[code] {
		return code
	}
	return d.defaultSpecialty
}

// TrainersFor returns all trainers across all zones whose specialty matches
// exactly, deduplicated by normalized name + email identity. When the same
// physical trainer appears under several zone entries, the first-encountered
// entry's zone and department are retained.
func (d *Directory) TrainersFor(ctx context.Context, specialty string) []*model.TrainerRecord {
	if specialty == "" {
		return nil
	}

	d.mu.RLock()
	if !d.loaded {
		d.mu.RUnlock()
		d.log.Warn(ctx, "trainer query on unloaded directory", logger.String("specialty", specialty))
		return nil
	}
	idx := d.bySpecialty
	d.mu.RUnlock()

	if idx == nil {
		idx = d.buildSpecialtyIndex()
	}
	return idx[specialty]
}

// buildSpecialtyIndex flattens and deduplicates the roster into a
// specialty→trainers map, preserving roster order.
func (d *Directory) buildSpecialtyIndex() map[string][]*model.TrainerRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bySpecialty != nil {
		return d.bySpecialty
	}

	idx := make(map[string][]*model.TrainerRecord)
	seen := make(map[string]bool)
	total := 0

	for _, z := range d.zones {
		for _, t := range z.Trainers {
			rec := &model.TrainerRecord{
				FirstName:  strings.TrimSpace(t.FirstName),
				LastName:   strings.TrimSpace(t.LastName),
				Specialty:  strings.TrimSpace(t.Specialty),
				Zone:       z.Zone,
				Department: z.Department,
				Email:      strings.TrimSpace(t.Email),
			}
			id := rec.Identity()
			if seen[id] {
				// Duplicate zone claims for the same trainer are discarded.
				continue
			}
			seen[id] = true
			idx[rec.Specialty] = append(idx[rec.Specialty], rec)
			total++
		}
	}

	d.bySpecialty = idx
	metrics.UpdateTrainersIndexed(total)
	return idx
}

// ZoneForDepartment resolves a client department to its zone, if known.
func (d *Directory) ZoneForDepartment(department string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	zone, ok := d.zoneByDept[department]
	return zone, ok
}

// Loaded reports whether Load has completed.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// ZoneCount returns the number of zone entries in the roster.
func (d *Directory) ZoneCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.zones)
}
