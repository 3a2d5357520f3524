package importer

import (
	"github.com/mendesarts/vox2you-import/internal/coerce"
	"github.com/mendesarts/vox2you-import/internal/model"
)

// ResolutionMode is the batch-wide answer to a duplicate report. There is
// no per-row mixing within one batch.
type ResolutionMode string

const (
	ResolutionIgnore    ResolutionMode = "ignore"    // keep existing leads, commit non-conflicting rows
	ResolutionOverwrite ResolutionMode = "overwrite" // replace existing leads' fields with incoming values
)

// RowAction is the determinate fate of one row in a resolved plan.
type RowAction string

const (
	ActionCreate    RowAction = "create"
	ActionOverwrite RowAction = "overwrite"
	ActionSkip      RowAction = "skip"
)

// PlannedRow pairs a draft with its resolved action. MatchedLeadID is set
// for overwrite and skip rows.
type PlannedRow struct {
	Draft         *model.LeadDraft
	Action        RowAction
	MatchedLeadID int64
}

// Plan is the all-or-nothing resolved batch handed to the persistence
// layer: every row has a determinate action before any write is attempted.
type Plan struct {
	ImportID string
	UnitID   int64
	Mode     ResolutionMode
	Rows     []PlannedRow
}

// CommitResult summarizes a committed batch.
type CommitResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Ignored int      `json:"ignored"`
	Errors  []string `json:"errors,omitempty"`
}

// CollectKeys gathers the batch's candidate duplicate keys: the distinct
// clean phone numbers and external ids across all drafts.
func CollectKeys(drafts []*model.LeadDraft) (phones, externalIDs []string) {
	seenPhone := make(map[string]bool)
	seenID := make(map[string]bool)
	for _, d := range drafts {
		if d.Phone != "" && !seenPhone[d.Phone] {
			seenPhone[d.Phone] = true
			phones = append(phones, d.Phone)
		}
		if d.ExternalID != "" && !seenID[d.ExternalID] {
			seenID[d.ExternalID] = true
			externalIDs = append(externalIDs, d.ExternalID)
		}
	}
	return phones, externalIDs
}

// BuildPlan resolves every draft against the duplicate report under one
// batch-wide mode. Conflicting rows become overwrite or skip; everything
// else is a create.
func BuildPlan(importID string, unitID int64, drafts []*model.LeadDraft, report model.DuplicateReport, mode ResolutionMode) *Plan {
	byPhone := make(map[string]model.DuplicateCandidate)
	byExternalID := make(map[string]model.DuplicateCandidate)
	for _, c := range report.Duplicates {
		if c.Phone != "" {
			if clean, ok := coerce.Phone(c.Phone); ok {
				for _, v := range coerce.PhoneVariations(clean) {
					byPhone[v] = c
				}
			}
		}
		if c.ExternalID != "" {
			byExternalID[c.ExternalID] = c
		}
	}

	plan := &Plan{
		ImportID: importID,
		UnitID:   unitID,
		Mode:     mode,
		Rows:     make([]PlannedRow, 0, len(drafts)),
	}
	for _, d := range drafts {
		matched, ok := matchCandidate(d, byPhone, byExternalID)
		row := PlannedRow{Draft: d, Action: ActionCreate}
		if ok {
			row.MatchedLeadID = matched.LeadID
			if mode == ResolutionOverwrite {
				row.Action = ActionOverwrite
			} else {
				row.Action = ActionSkip
			}
		}
		plan.Rows = append(plan.Rows, row)
	}
	return plan
}

func matchCandidate(d *model.LeadDraft, byPhone, byExternalID map[string]model.DuplicateCandidate) (model.DuplicateCandidate, bool) {
	if d.ExternalID != "" {
		if c, ok := byExternalID[d.ExternalID]; ok {
			return c, true
		}
	}
	if d.Phone != "" {
		for _, v := range coerce.PhoneVariations(d.Phone) {
			if c, ok := byPhone[v]; ok {
				return c, true
			}
		}
	}
	return model.DuplicateCandidate{}, false
}
