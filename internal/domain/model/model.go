// Package model contains domain models passed between layers.
package model

import "strings"

// Kind distinguishes existing clients from prospects.
type Kind string

// Client kinds.
const (
	KindProspect Kind = "Prospect"
	KindClient   Kind = "Client"
)

// ParseKind maps a raw dataset value to a Kind. Anything that is not
// literally "Client" is treated as a prospect; prospect rows carry
// third-party product names in the kind-adjacent columns.
func ParseKind(raw string) Kind {
	if strings.TrimSpace(raw) == string(KindClient) {
		return KindClient
	}
	return KindProspect
}

// Role names are the fixed role-headcount columns of the client dataset,
// in dataset order.
const (
	RoleAssociate      = "Associate"
	RoleCollaborator   = "Collaborator"
	RoleSecretary      = "Secretary"
	RoleLegalAssistant = "LegalAssistant"
	RoleJurist         = "Jurist"
	RoleIT             = "IT"
	RoleHR             = "HR"
	RoleCommunication  = "Communication"
	RoleDocumentation  = "Documentation"
	RoleAccounting     = "Accounting"
)

// Roles returns the role column names in dataset order.
func Roles() []string {
	return []string{
		RoleAssociate,
		RoleCollaborator,
		RoleSecretary,
		RoleLegalAssistant,
		RoleJurist,
		RoleIT,
		RoleHR,
		RoleCommunication,
		RoleDocumentation,
		RoleAccounting,
	}
}

// ClientRecord is one row of the client dataset. Records are built once at
// load time and immutable afterward; index aliases share the same record.
type ClientRecord struct {
	Numero         string         `json:"numero"`
	Name           string         `json:"name"`
	Kind           Kind           `json:"kind"`
	ERP            string         `json:"erp"`
	Headcount      int            `json:"headcount"`
	RoleHeadcounts map[string]int `json:"role_headcounts"`
	Department     string         `json:"department"`
}

// RoleSum returns the sum of all role headcounts. It should equal Headcount;
// a mismatch is logged at load time, not rejected.
func (c *ClientRecord) RoleSum() int {
	sum := 0
	for _, n := range c.RoleHeadcounts {
		sum += n
	}
	return sum
}

// TrainerRecord is one deduplicated trainer from the roster.
type TrainerRecord struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Specialty  string `json:"specialty"`
	Zone       string `json:"zone"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// Identity returns the trainer's deduplication key. Name and email are
// trimmed and case-folded so that formatting differences between zone
// entries collapse to one logical trainer.
func (t *TrainerRecord) Identity() string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(t.FirstName) + "|" + norm(t.LastName) + "|" + norm(t.Email)
}

// TrainingMode selects on-site or remote delivery.
type TrainingMode string

// Training modes.
const (
	ModeOnSite TrainingMode = "onsite"
	ModeRemote TrainingMode = "remote"
)

// ParseTrainingMode maps a raw mode string to a TrainingMode. The legacy
// form values ("sur-site", "distance") are accepted; anything unrecognized
// defaults to on-site delivery.
func ParseTrainingMode(raw string) TrainingMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remote", "distance":
		return ModeRemote
	default:
		return ModeOnSite
	}
}
