package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mendesarts/vox2you-import/internal/coerce"
	"github.com/mendesarts/vox2you-import/internal/model"
	"github.com/mendesarts/vox2you-import/internal/resolve"
)

// FallbackName is assigned to rows that carry no name at all.
const FallbackName = "Imported lead"

var (
	followUpRe = regexp.MustCompile(`(?i)follow up \d+`)
	resultRe   = regexp.MustCompile(`(?i)resultado .* tentativa|conex[aã]o|entrevista|tipo de`)
	digitsRe   = regexp.MustCompile(`\d+`)
)

// Assembler merges header resolution, field coercion, status/funnel
// inference and responsible resolution into canonical lead drafts.
type Assembler struct {
	Catalog *model.Catalog
	Config  model.SessionConfig
	Users   []model.User
	Units   []model.Unit

	// Now is the assembly clock; tests pin it. Nil means time.Now.
	Now func() time.Time
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

// AssembleRow turns one raw row into a canonical lead draft. Headers are
// processed in sheet order so the phone no-clobber rule is deterministic.
// Coercion failures degrade to safe defaults and are recorded as
// provenance notes; they never drop the row.
func (a *Assembler) AssembleRow(headers []string, row map[string]string, mapping map[string]string) *model.LeadDraft {
	draft := &model.LeadDraft{
		Tags:      []string{model.ImportedTag},
		CreatedAt: a.now(),
	}

	for _, header := range headers {
		key, ok := mapping[header]
		if !ok || key == model.MappingIgnore {
			continue
		}
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}
		a.applyField(draft, key, value)
		if model.InteractionKey(key) && value != "0" {
			draft.HasInteraction = true
		}
	}

	a.scanUnmapped(draft, headers, row, mapping)
	a.applyDefaults(draft)
	a.inferFunnel(draft)

	return draft
}

func (a *Assembler) applyField(draft *model.LeadDraft, key, value string) {
	switch key {
	case "external_id":
		draft.ExternalID = value
	case "name":
		draft.Name = value
	case "phone":
		if clean, ok := coerce.Phone(value); ok {
			draft.Phone = clean
		} else {
			a.note(draft, fmt.Sprintf("discarded invalid phone %q", value))
		}
	case "email":
		if strings.Contains(value, "@") {
			draft.Email = value
		}
	case "status":
		draft.Stage = coerce.StageOf(value)
	case "funnel":
		if f := coerce.FunnelOf(value); f != "" {
			draft.Funnel = f
		}
	case "source":
		draft.SetField(key, value)
		// Social-network sources pull an otherwise-commercial lead into
		// the social funnel.
		if f := coerce.FunnelFromSource(value); f != "" && (draft.Funnel == "" || draft.Funnel == model.FunnelCRM) {
			draft.Funnel = f
		}
	case "responsible":
		draft.Responsible = value
		draft.ResponsibleID = resolve.ResolveResponsible(value, a.Config.ResponsibleOverrides, a.Users)
	case "unit":
		draft.UnitName = value
		for _, u := range a.Units {
			if resolve.Normalize(u.Name) == resolve.Normalize(value) {
				draft.UnitID = u.ID
				break
			}
		}
	case "tags":
		draft.Tags = append(draft.Tags, coerce.Tags(value)...)
	case "temperature":
		if t := coerce.Temperature(value); t != "" {
			draft.SetField(key, t)
		}
	case "observation":
		draft.SetField(key, value)
		a.note(draft, "imported observation: "+value)
	case "sales_value":
		draft.SalesValue = coerce.Money(value)
	case "enrollment_value":
		draft.EnrollmentValue = coerce.Money(value)
	case "material_value":
		draft.MaterialValue = coerce.Money(value)
	case "installments":
		draft.SetField(key, coerce.Installments(value))
	default:
		a.applyTyped(draft, key, value)
	}
}

// applyTyped handles the keys whose behavior depends only on the field's
// value kind: dates, identifiers, booleans, secondary phones, and the text
// catch-all (custom fields included).
func (a *Assembler) applyTyped(draft *model.LeadDraft, key, value string) {
	var kind model.ValueKind = model.KindText
	if f := a.Catalog.ByKey(key); f != nil {
		kind = f.Kind
	}

	switch kind {
	case model.KindDate:
		if t, ok := coerce.Date(value); ok {
			draft.SetDate(key, t)
		} else {
			draft.SetField(key, value)
			a.note(draft, fmt.Sprintf("could not parse date for %s: %q", key, value))
		}
	case model.KindIdentifier:
		draft.SetField(key, coerce.Identifier(value))
	case model.KindBool:
		if b, ok := coerce.Bool(value); ok {
			draft.SetField(key, strconv.FormatBool(b))
		} else {
			draft.SetField(key, value)
		}
	case model.KindPhone:
		if clean, ok := coerce.Phone(value); ok {
			draft.SetField(key, clean)
		}
	default:
		draft.SetField(key, value)
	}
}

// scanUnmapped walks every header of the row once more: follow-up/result
// matrix columns become structured contact attempts, contact-name columns
// backfill a missing name, and anything without a mapping is retained under
// the draft's extra data keyed by the original header text.
func (a *Assembler) scanUnmapped(draft *model.LeadDraft, headers []string, row map[string]string, mapping map[string]string) {
	for _, header := range headers {
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}

		hl := strings.ToLower(header)
		if draft.Name == "" && (strings.Contains(hl, "nome do contato") || strings.Contains(hl, "contact name")) {
			draft.Name = value
		}

		isFollowUp := followUpRe.MatchString(header)
		isResult := !isFollowUp && resultRe.MatchString(header)
		if isFollowUp || isResult {
			number := 1
			if m := digitsRe.FindString(header); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					number = n
				}
			}
			kind := "attempt"
			if isFollowUp {
				kind = "cadence"
			}
			draft.Attempts = append(draft.Attempts, model.ContactAttempt{
				Number: number,
				Type:   kind,
				Notes:  header + ": " + value,
				Date:   draft.CreatedAt,
			})
			draft.HasInteraction = true
			continue
		}

		if _, mapped := mapping[header]; !mapped {
			draft.SetExtra(header, value)
		}
	}
}

func (a *Assembler) applyDefaults(draft *model.LeadDraft) {
	if draft.Stage == "" {
		draft.Stage = model.StageNew
	}
	// Evidence of prior contact means the lead is past first touch.
	if draft.Stage == model.StageNew && draft.HasInteraction {
		draft.Stage = model.StageConnecting
	}

	if draft.ResponsibleID == 0 {
		draft.ResponsibleID = a.Config.DefaultResponsibleID
	}
	if draft.Responsible == "" && draft.ResponsibleID != 0 {
		for _, u := range a.Users {
			if u.ID == draft.ResponsibleID {
				draft.Responsible = u.Name
				break
			}
		}
	}

	if draft.UnitID == 0 {
		draft.UnitID = a.Config.DefaultUnitID
	}
	if draft.UnitID == 0 && draft.ResponsibleID != 0 {
		for _, u := range a.Users {
			if u.ID == draft.ResponsibleID {
				draft.UnitID = u.UnitID
				break
			}
		}
	}
	if draft.UnitName == "" {
		for _, u := range a.Units {
			if u.ID == draft.UnitID {
				draft.UnitName = u.Name
				break
			}
		}
	}

	if draft.Name == "" {
		draft.Name = FallbackName
	}
}

// inferFunnel applies the funnel rules after the stage is final: social and
// internal stages force their funnel regardless of any mapped funnel
// column, missing signals fall back to the session target (auto means
// crm), and won/closed leads always land in crm so they stay visible in
// the commercial pipeline.
func (a *Assembler) inferFunnel(draft *model.LeadDraft) {
	switch {
	case draft.Stage.IsSocial():
		draft.Funnel = model.FunnelSocial
	case draft.Stage.IsInternal():
		draft.Funnel = model.FunnelInternal
	case draft.Funnel == "":
		target := a.Config.TargetFunnel
		if target == "" || target == model.FunnelAuto {
			target = model.FunnelCRM
		}
		draft.Funnel = target
	}

	if draft.Stage == model.StageWon || draft.Stage == model.StageClosed {
		draft.Funnel = model.FunnelCRM
	}
}

func (a *Assembler) note(draft *model.LeadDraft, content string) {
	draft.History = append(draft.History, model.Note{
		Date:    a.now(),
		Actor:   "import",
		Content: content,
	})
}

// Keep reports whether an assembled draft carries enough identity to be
// worth committing: a usable phone, a real name, or an external id.
func Keep(draft *model.LeadDraft) bool {
	if len(draft.Phone) >= 8 {
		return true
	}
	if draft.Name != "" && draft.Name != FallbackName {
		return true
	}
	return draft.ExternalID != ""
}
