// Package assignment ranks candidate trainers for a matched client by
// specialty, geographic proximity, and training-mode policy.
package assignment

import (
	"context"
	"sort"

	"github.com/tlibouban/deploycheck/internal/domain/model"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// Proximity scores. Lower is closer; ScoreUnranked marks candidates that
// were never compared geographically (remote delivery, unknown client zone).
const (
	ScoreSameZone = 0
	ScoreNearZone = 1
	ScoreFarZone  = 2
	ScoreUnranked = -1
)

// FailureReason tags a resolution that cannot proceed.
type FailureReason string

// Resolution failure reasons.
const (
	ReasonNone                FailureReason = ""
	ReasonNoSpecialty         FailureReason = "no_specialty"
	ReasonNoTrainersAvailable FailureReason = "no_trainers_available"
)

// Directory abstracts what the resolver needs from the trainer directory.
type Directory interface {
	SpecialtyFor(productCode string) string
	TrainersFor(ctx context.Context, specialty string) []*model.TrainerRecord
	ZoneForDepartment(department string) (string, bool)
}

// RankedTrainer pairs a candidate with its proximity score.
type RankedTrainer struct {
	Trainer        *model.TrainerRecord `json:"trainer"`
	ProximityScore int                  `json:"proximity_score"`
}

// Result is the ephemeral outcome of one resolution. It is recomputed on
// every relevant input change and never persisted. Failures are data, not
// errors; callers render Reason as a user-facing message.
type Result struct {
	Success        bool               `json:"success"`
	Reason         FailureReason      `json:"reason,omitempty"`
	Specialty      string             `json:"specialty,omitempty"`
	TrainingMode   model.TrainingMode `json:"training_mode"`
	ClientZone     string             `json:"client_zone,omitempty"`
	TotalAvailable int                `json:"total_available"`
	Ranked         []RankedTrainer    `json:"ranked_trainers"`
	Primary        *RankedTrainer     `json:"primary_trainer,omitempty"`
}

// Resolver computes trainer assignments against a directory.
type Resolver struct {
	dir        Directory
	zoneGroups map[string][]string
	log        logger.Logger
}

// New constructs a resolver for the given directory.
func New(dir Directory, opts ...Option) *Resolver {
	r := &Resolver{
		dir:        dir,
		zoneGroups: defaultZoneGroups(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		r.log = logger.Get().Named("assignment")
	}

	return r
}

// defaultZoneGroups returns the symmetric "near" groups. Only the
// Centre-Ouest/Ouest pairing spans two zones; every other zone is near
// itself only.
func defaultZoneGroups() map[string][]string {
	return map[string][]string{
		"Nord":          {"Nord"},
		"Île-de-France": {"Île-de-France"},
		"Est":           {"Est"},
		"Centre-Ouest":  {"Centre-Ouest", "Ouest"},
		"Ouest":         {"Ouest", "Centre-Ouest"},
		"Sud-Est":       {"Sud-Est"},
		"Sud-Ouest":     {"Sud-Ouest"},
	}
}

// Resolve determines the required specialty, retrieves candidates, and ranks
// them by geographic proximity unless the delivery is remote or the client
// zone is unknown. The client may be nil (no match yet).
func (r *Resolver) Resolve(ctx context.Context, client *model.ClientRecord, productCode string, mode model.TrainingMode) Result {
	specialty := r.dir.SpecialtyFor(productCode)
	if specialty == "" {
		metrics.RecordAssignment("no_specialty")
		return Result{Reason: ReasonNoSpecialty, TrainingMode: mode}
	}

	candidates := r.dir.TrainersFor(ctx, specialty)
	if len(candidates) == 0 {
		metrics.RecordAssignment("no_trainers")
		return Result{Reason: ReasonNoTrainersAvailable, Specialty: specialty, TrainingMode: mode}
	}

	res := Result{
		Success:        true,
		Specialty:      specialty,
		TrainingMode:   mode,
		TotalAvailable: len(candidates),
	}

	if client != nil && client.Department != "" {
		if zone, ok := r.dir.ZoneForDepartment(client.Department); ok {
			res.ClientZone = zone
		}
	}

	// Geography is irrelevant for remote delivery or unknown clients.
	if mode == model.ModeRemote || res.ClientZone == "" {
		res.Ranked = unranked(candidates)
	} else {
		res.Ranked = r.rankByProximity(candidates, res.ClientZone)
	}

	if len(res.Ranked) > 0 {
		res.Primary = &res.Ranked[0]
	}

	metrics.RecordAssignment("resolved")
	return res
}

// rankByProximity scores every candidate against the client zone and sorts
// ascending. The sort is stable: ties keep their roster order.
func (r *Resolver) rankByProximity(candidates []*model.TrainerRecord, clientZone string) []RankedTrainer {
	ranked := make([]RankedTrainer, len(candidates))
	for i, t := range candidates {
		ranked[i] = RankedTrainer{Trainer: t, ProximityScore: r.proximity(clientZone, t.Zone)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ProximityScore < ranked[j].ProximityScore
	})
	return ranked
}

// proximity returns 0 for the same zone, 1 when the trainer zone belongs to
// the client zone's adjacency group, and 2 otherwise.
func (r *Resolver) proximity(clientZone, trainerZone string) int {
	if clientZone == trainerZone {
		return ScoreSameZone
	}
	for _, near := range r.zoneGroups[clientZone] {
		if near == trainerZone {
			return ScoreNearZone
		}
	}
	return ScoreFarZone
}

func unranked(candidates []*model.TrainerRecord) []RankedTrainer {
	ranked := make([]RankedTrainer, len(candidates))
	for i, t := range candidates {
		ranked[i] = RankedTrainer{Trainer: t, ProximityScore: ScoreUnranked}
	}
	return ranked
}
