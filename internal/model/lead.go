package model

import "time"

// Stage is a lead's position within its funnel's pipeline.
type Stage string

const (
	StageNew              Stage = "new"
	StageConnecting       Stage = "connecting"
	StageConnected        Stage = "connected"
	StageScheduled        Stage = "scheduled"
	StageNegotiation      Stage = "negotiation"
	StageWon              Stage = "won"
	StageClosed           Stage = "closed"
	StageNoShow           Stage = "no_show"
	StageSocialComment    Stage = "social_comment"
	StageSocialDirect     Stage = "social_direct"
	StageSocialProspect   Stage = "social_prospect"
	StageInternalStudents Stage = "internal_students"
	StageInternalOther    Stage = "internal_other"
	StageInternalTeam     Stage = "internal_team"
)

// IsSocial reports whether the stage belongs to the social funnel group.
func (s Stage) IsSocial() bool {
	return s == StageSocialComment || s == StageSocialDirect || s == StageSocialProspect
}

// IsInternal reports whether the stage belongs to the internal funnel group.
func (s Stage) IsInternal() bool {
	return s == StageInternalStudents || s == StageInternalOther || s == StageInternalTeam
}

// Funnel is a top-level grouping of pipeline stages.
type Funnel string

const (
	FunnelAuto     Funnel = "auto"
	FunnelCRM      Funnel = "crm"
	FunnelSocial   Funnel = "social"
	FunnelInternal Funnel = "internal"
)

// ImportedTag marks every lead that entered the system through an import.
const ImportedTag = "Imported"

// Note is one provenance entry on a draft's history.
type Note struct {
	Date    time.Time `json:"date"`
	Actor   string    `json:"actor"`
	Content string    `json:"content"`
}

// ContactAttempt is a historical interaction reconstructed from the
// spreadsheet's follow-up/result matrix columns.
type ContactAttempt struct {
	Number int       `json:"number"`
	Type   string    `json:"type"` // "cadence" or "attempt"
	Notes  string    `json:"notes"`
	Date   time.Time `json:"date"`
}

// LeadDraft is one fully coerced, not-yet-committed canonical lead.
// Stage is never empty after assembly and Tags always contain ImportedTag.
type LeadDraft struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`

	Stage         Stage  `json:"stage"`
	Funnel        Funnel `json:"funnel"`
	Responsible   string `json:"responsible,omitempty"`
	ResponsibleID int64  `json:"responsible_id,omitempty"`
	UnitID        int64  `json:"unit_id,omitempty"`
	UnitName      string `json:"unit_name,omitempty"`

	SalesValue      float64 `json:"sales_value,omitempty"`
	EnrollmentValue float64 `json:"enrollment_value,omitempty"`
	MaterialValue   float64 `json:"material_value,omitempty"`

	Tags     []string             `json:"tags"`
	Fields   map[string]string    `json:"fields,omitempty"` // coerced text by canonical key
	Dates    map[string]time.Time `json:"dates,omitempty"`  // coerced timestamps by canonical key
	Extra    map[string]string    `json:"extra,omitempty"`  // unmatched headers, keyed by original header text
	History  []Note               `json:"history,omitempty"`
	Attempts []ContactAttempt     `json:"attempts,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	HasInteraction bool      `json:"-"`
}

// Field returns the coerced text value for a canonical key, or "".
func (d *LeadDraft) Field(key string) string {
	return d.Fields[key]
}

// SetField stores a coerced text value under a canonical key.
func (d *LeadDraft) SetField(key, value string) {
	if d.Fields == nil {
		d.Fields = make(map[string]string)
	}
	d.Fields[key] = value
}

// SetDate stores a coerced timestamp under a canonical key.
func (d *LeadDraft) SetDate(key string, t time.Time) {
	if d.Dates == nil {
		d.Dates = make(map[string]time.Time)
	}
	d.Dates[key] = t
}

// SetExtra retains an unmatched header's value under the original header text.
func (d *LeadDraft) SetExtra(header, value string) {
	if d.Extra == nil {
		d.Extra = make(map[string]string)
	}
	d.Extra[header] = value
}

// MatchReason says which key matched an incoming row to an existing lead.
type MatchReason string

const (
	MatchPhone      MatchReason = "phone"
	MatchExternalID MatchReason = "external_id"
)

// DuplicateCandidate is one conflict between an incoming row and an
// existing lead. Produced during detection only, never persisted.
type DuplicateCandidate struct {
	LeadID     int64       `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	ExternalID string      `json:"external_id,omitempty"`
	Reason     MatchReason `json:"reason"`
}

// DuplicateReport summarizes batch-level conflicts against the lead store.
type DuplicateReport struct {
	Found      int                  `json:"found"`
	Duplicates []DuplicateCandidate `json:"duplicates"`
}

// User is a known system user a "responsible" column can resolve to.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UnitID int64  `json:"unit_id"`
}

// Unit is a school unit leads are scoped to.
type Unit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SessionConfig holds the operator-supplied, session-scoped defaults that
// fill gaps left by per-row resolution. It lives only for one import
// session; the persisted header mapping does not.
type SessionConfig struct {
	TargetFunnel         Funnel
	DefaultUnitID        int64
	DefaultResponsibleID int64
	ResponsibleOverrides map[string]int64 // raw spreadsheet name -> user id
}
