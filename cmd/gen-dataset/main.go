// Command gen-dataset writes a deterministic sample client dataset and
// trainer roster for local runs and load experiments.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tlibouban/deploycheck/internal/domain/trainerdir"
)

const defaultClients = 500

var firstNames = []string{"Claire", "Julien", "Sophie", "Marc", "Gwenn", "Élise", "Paul", "Nadia", "Hugo", "Camille"}

var lastNames = []string{"Weber", "Roche", "Le Goff", "Berger", "Martin", "Dubois", "Morel", "Lefèvre", "Garnier", "Petit"}

var firmPrefixes = []string{"Cabinet", "SCP", "SELARL", "Étude", "Société"}

var products = []string{"AIR", "NEO", "ADAPPS", "POLYACTE", "SECIB"}

// zones maps each zone to the departments it serves.
var zones = map[string][]string{
	"Nord":          {"Nord", "Pas-de-Calais", "Somme"},
	"Île-de-France": {"Paris", "Hauts-de-Seine", "Val-de-Marne"},
	"Est":           {"Bas-Rhin", "Haut-Rhin", "Moselle"},
	"Centre-Ouest":  {"Indre-et-Loire", "Vienne", "Loiret"},
	"Ouest":         {"Morbihan", "Finistère", "Loire-Atlantique"},
	"Sud-Est":       {"Rhône", "Isère", "Bouches-du-Rhône"},
	"Sud-Ouest":     {"Gironde", "Haute-Garonne", "Dordogne"},
}

var zoneOrder = []string{"Nord", "Île-de-France", "Est", "Centre-Ouest", "Ouest", "Sud-Est", "Sud-Ouest"}

func main() {
	var (
		numClients = flag.Int("clients", defaultClients, "Number of client rows to generate")
		outDir     = flag.String("out", "data", "Output directory")
		seed       = flag.Int64("seed", 1, "Random seed; same seed, same files")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		os.Stderr.WriteString("failed to create output dir: " + err.Error() + "\n")
		os.Exit(1)
	}

	clientsPath := filepath.Join(*outDir, "clients.tsv")
	if err := writeClients(clientsPath, *numClients, rng); err != nil {
		os.Stderr.WriteString("failed to write clients: " + err.Error() + "\n")
		os.Exit(1)
	}

	rosterPath := filepath.Join(*outDir, "trainers.json")
	if err := writeRoster(rosterPath, rng); err != nil {
		os.Stderr.WriteString("failed to write roster: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d clients) and %s\n", clientsPath, *numClients, rosterPath)
}

func writeClients(path string, n int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // flushed below

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := []string{
		"numero", "nom", "type", "erp", "effectif",
		"associes", "collaborateurs", "secretaires", "assistants", "juristes",
		"informatique", "rh", "communication", "documentation", "comptabilite",
		"departement",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	departments := allDepartments()
	for i := 0; i < n; i++ {
		kind := "Client"
		if rng.Intn(4) == 0 {
			kind = "Prospect"
		}

		// Role headcounts sum to the declared effectif.
		roles := make([]int, 10)
		headcount := 0
		for j := 0; j < 10; j++ {
			roles[j] = rng.Intn(4)
			headcount += roles[j]
		}

		row := []string{
			fmt.Sprintf("%04d", i+1),
			firmName(rng),
			kind,
			products[rng.Intn(len(products))],
			strconv.Itoa(headcount),
		}
		for _, r := range roles {
			row = append(row, strconv.Itoa(r))
		}
		row = append(row, departments[rng.Intn(len(departments))])

		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeRoster(path string, rng *rand.Rand) error {
	var entries []trainerdir.ZoneEntry
	for _, zone := range zoneOrder {
		for _, dept := range zones[zone] {
			count := 1 + rng.Intn(3)
			trainers := make([]trainerdir.TrainerEntry, 0, count)
			for i := 0; i < count; i++ {
				first := firstNames[rng.Intn(len(firstNames))]
				last := lastNames[rng.Intn(len(lastNames))]
				trainers = append(trainers, trainerdir.TrainerEntry{
					FirstName: first,
					LastName:  last,
					Specialty: products[rng.Intn(3)],
					Email:     fmt.Sprintf("%s.%s@example.fr", slug(first), slug(last)),
				})
			}
			entries = append(entries, trainerdir.ZoneEntry{
				Zone:       zone,
				Department: dept,
				Trainers:   trainers,
			})
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func firmName(rng *rand.Rand) string {
	prefix := firmPrefixes[rng.Intn(len(firmPrefixes))]
	name := lastNames[rng.Intn(len(lastNames))]
	if rng.Intn(3) == 0 {
		return fmt.Sprintf("%s %s & Associés", prefix, name)
	}
	return fmt.Sprintf("%s %s", prefix, name)
}

func allDepartments() []string {
	var out []string
	for _, zone := range zoneOrder {
		out = append(out, zones[zone]...)
	}
	// A few rows land outside any known zone on purpose.
	out = append(out, "Corse-du-Sud", "Guadeloupe")
	return out
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == 'é' || r == 'è' || r == 'ê':
			out = append(out, 'e')
		}
	}
	return string(out)
}
