// Package dataset loads the client list and trainer roster from disk.
//
// Clients ship as a tab-separated export with a single header row; the
// roster is a JSON array of zone entries. Both loaders read the whole file
// and hand structured rows to the domain layer, which owns the per-row
// validation rules.
package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tlibouban/deploycheck/internal/domain/trainerdir"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// Dataset labels used in load metrics.
const (
	datasetClients = "clients"
	datasetRoster  = "roster"

	resultOK    = "ok"
	resultError = "error"
)

// Loader reads datasets from the local filesystem.
type Loader struct {
	log logger.Logger
}

// NewLoader constructs a filesystem loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}

	for _, opt := range opts {
		opt(l)
	}

	if l.log == nil {
		l.log = logger.Get().Named("dataset")
	}

	return l
}

// LoadClientRows reads a tab-separated client export and returns its data
// rows with the header stripped. Rows keep their raw cells; the index layer
// decides which ones are usable.
func (l *Loader) LoadClientRows(ctx context.Context, path string) ([][]string, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		metrics.RecordDatasetLoad(datasetClients, resultError)
		return nil, fmt.Errorf("%w: %w", ErrOpenDataset, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		metrics.RecordDatasetLoad(datasetClients, resultError)
		return nil, fmt.Errorf("%w: %w", ErrParseDataset, err)
	}

	if len(rows) > 0 {
		// First row is the column header.
		rows = rows[1:]
	}

	metrics.RecordDatasetLoad(datasetClients, resultOK)
	metrics.RecordDatasetLoadDuration(float64(time.Since(start).Milliseconds()))
	l.log.Info(ctx, "client dataset loaded",
		logger.String("path", path),
		logger.Int("rows", len(rows)))
	return rows, nil
}

// LoadRoster reads the trainer roster JSON file.
func (l *Loader) LoadRoster(ctx context.Context, path string) ([]trainerdir.ZoneEntry, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		metrics.RecordDatasetLoad(datasetRoster, resultError)
		return nil, fmt.Errorf("%w: %w", ErrOpenDataset, err)
	}

	var zones []trainerdir.ZoneEntry
	if err := json.Unmarshal(data, &zones); err != nil {
		metrics.RecordDatasetLoad(datasetRoster, resultError)
		return nil, fmt.Errorf("%w: %w", ErrParseDataset, err)
	}

	metrics.RecordDatasetLoad(datasetRoster, resultOK)
	metrics.RecordDatasetLoadDuration(float64(time.Since(start).Milliseconds()))
	l.log.Info(ctx, "trainer roster loaded",
		logger.String("path", path),
		logger.Int("zones", len(zones)))
	return zones, nil
}
