package importer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mendesarts/vox2you-import/internal/model"
	"github.com/mendesarts/vox2you-import/internal/resolve"
)

// State is the session's position in the import flow. Transitions are
// user-triggered except the automatic skip of StateResponsibleReview when
// every responsible name already resolves.
type State string

const (
	StateUploading         State = "uploading"
	StateHeadersParsed     State = "headers_parsed"
	StateMapped            State = "mapped"
	StateResponsibleReview State = "responsible_review"
	StateDuplicateCheck    State = "duplicate_check"
	StateResolved          State = "resolved"
	StateCommitted         State = "committed"
)

// MappingStore persists the header mapping and custom-field list across
// import sessions. Writes happen only on explicit save.
type MappingStore interface {
	LoadMapping(ctx context.Context) (mapping map[string]string, customFields []string, err error)
	SaveMapping(ctx context.Context, mapping map[string]string, customFields []string) error
}

// LeadStore is the reference collaborator holding existing leads, users
// and units, and the destination of the committed batch.
type LeadStore interface {
	FindDuplicates(ctx context.Context, phones, externalIDs []string, unitID int64) (model.DuplicateReport, error)
	CommitBatch(ctx context.Context, plan *Plan) (CommitResult, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUnits(ctx context.Context) ([]model.Unit, error)
}

// Session drives one import run end to end. It is single-threaded: one
// table is mapped and resolved at a time, and abandoning the session at
// any state before commit has no side effects.
type Session struct {
	ID      string
	Config  model.SessionConfig
	Catalog *model.Catalog

	mappings MappingStore
	leads    LeadStore

	state     State
	persisted map[string]string
	headers   []string
	rows      []map[string]string
	mapping   map[string]string
	users     []model.User
	units     []model.Unit
	drafts    []*model.LeadDraft
	report    model.DuplicateReport
	plan      *Plan
}

// NewSession loads the persisted header mapping, custom fields and
// reference collections, returning a session in StateUploading. Load
// failures are recoverable: nothing has been modified.
func NewSession(ctx context.Context, cfg model.SessionConfig, mappings MappingStore, leads LeadStore) (*Session, error) {
	s := &Session{
		ID:       uuid.New().String(),
		Config:   cfg,
		Catalog:  model.DefaultCatalog(),
		mappings: mappings,
		leads:    leads,
		state:    StateUploading,
	}

	persisted, customFields, err := mappings.LoadMapping(ctx)
	if err != nil {
		return nil, &RecoverableOperationError{Op: "load persisted mapping", Err: err}
	}
	s.persisted = persisted
	for _, key := range customFields {
		s.Catalog.AddCustom(key)
	}

	if s.users, err = leads.ListUsers(ctx); err != nil {
		return nil, &RecoverableOperationError{Op: "load users", Err: err}
	}
	if s.units, err = leads.ListUnits(ctx); err != nil {
		return nil, &RecoverableOperationError{Op: "load units", Err: err}
	}

	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Mapping returns the resolved header mapping, for display or persistence.
func (s *Session) Mapping() map[string]string { return s.mapping }

// Drafts returns the assembled lead drafts.
func (s *Session) Drafts() []*model.LeadDraft { return s.drafts }

// Report returns the duplicate report from the last check.
func (s *Session) Report() model.DuplicateReport { return s.report }

// SetTable installs the parsed table. Valid only before mapping.
func (s *Session) SetTable(headers []string, rows []map[string]string) error {
	if s.state != StateUploading {
		return ErrWrongState
	}
	s.headers = headers
	s.rows = rows
	s.state = StateHeadersParsed
	return nil
}

// ResolveMapping runs header reconciliation and validates that the batch
// has a destination. Mandatory canonical fields (name, phone) must be
// mapped and a unit plus funnel must be resolvable, otherwise the batch is
// blocked before any processing.
func (s *Session) ResolveMapping() error {
	if s.state != StateHeadersParsed {
		return ErrWrongState
	}
	s.mapping = resolve.ResolveHeaders(s.headers, s.Catalog, s.persisted)

	if err := s.validateMapping(); err != nil {
		return err
	}

	s.state = StateMapped
	zap.L().Info("headers mapped",
		zap.String("session", s.ID),
		zap.Int("headers", len(s.headers)),
		zap.Int("mapped", len(s.mapping)),
	)
	return nil
}

func (s *Session) validateMapping() error {
	var hasName, hasPhone bool
	for _, key := range s.mapping {
		switch key {
		case "name":
			hasName = true
		case "phone":
			hasPhone = true
		}
	}
	var missing []string
	if !hasName {
		missing = append(missing, "name")
	}
	if !hasPhone {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return &BlockingValidationError{
			Reason: "no header maps to mandatory field(s): " + strings.Join(missing, ", "),
		}
	}

	if s.Config.DefaultUnitID == 0 && !s.mappingHas("unit") {
		return &BlockingValidationError{Reason: "no destination unit: select a default unit or map a unit column"}
	}
	if s.Config.TargetFunnel == "" && !s.mappingHas("funnel") {
		return &BlockingValidationError{Reason: "no destination funnel: select one or map a funnel column"}
	}
	return nil
}

func (s *Session) mappingHas(key string) bool {
	for _, k := range s.mapping {
		if k == key {
			return true
		}
	}
	return false
}

// PendingResponsibles returns the raw responsible names that neither the
// override table nor the known users resolve. A non-empty result moves the
// session into the responsible-review state.
func (s *Session) PendingResponsibles() []string {
	if s.state != StateMapped && s.state != StateResponsibleReview {
		return nil
	}
	unmatched := resolve.UnmatchedResponsibleNames(s.rows, s.mapping, s.Config.ResponsibleOverrides, s.users)
	if len(unmatched) > 0 {
		s.state = StateResponsibleReview
	}
	return unmatched
}

// SetResponsibleOverrides installs the operator's per-name assignments and
// returns the session to the mapped state.
func (s *Session) SetResponsibleOverrides(overrides map[string]int64) error {
	if s.state != StateMapped && s.state != StateResponsibleReview {
		return ErrWrongState
	}
	if s.Config.ResponsibleOverrides == nil {
		s.Config.ResponsibleOverrides = make(map[string]int64)
	}
	for name, id := range overrides {
		s.Config.ResponsibleOverrides[name] = id
	}
	s.state = StateMapped
	return nil
}

// Assemble coerces every row into a draft and drops rows with no usable
// identity. Valid from the mapped state.
func (s *Session) Assemble() error {
	if s.state != StateMapped {
		return ErrWrongState
	}

	asm := &Assembler{
		Catalog: s.Catalog,
		Config:  s.Config,
		Users:   s.users,
		Units:   s.units,
	}

	s.drafts = s.drafts[:0]
	dropped := 0
	for i, row := range s.rows {
		draft := asm.AssembleRow(s.headers, row, s.mapping)
		if !Keep(draft) {
			dropped++
			zap.L().Warn("dropping row without identity", zap.String("session", s.ID), zap.Int("row", i+1))
			continue
		}
		s.drafts = append(s.drafts, draft)
	}

	zap.L().Info("rows assembled",
		zap.String("session", s.ID),
		zap.Int("drafts", len(s.drafts)),
		zap.Int("dropped", dropped),
	)
	return nil
}

// CheckDuplicates queries the lead store for conflicts on phone or
// external id. A store failure is recoverable: the user may retry and no
// partial commit has occurred.
func (s *Session) CheckDuplicates(ctx context.Context) (model.DuplicateReport, error) {
	if s.state != StateMapped {
		return model.DuplicateReport{}, ErrWrongState
	}

	phones, externalIDs := CollectKeys(s.drafts)
	report, err := s.leads.FindDuplicates(ctx, phones, externalIDs, s.Config.DefaultUnitID)
	if err != nil {
		return model.DuplicateReport{}, &RecoverableOperationError{Op: "duplicate check", Err: err}
	}
	s.report = report
	s.state = StateDuplicateCheck

	zap.L().Info("duplicate check complete",
		zap.String("session", s.ID),
		zap.Int("found", report.Found),
	)
	return report, nil
}

// Resolve builds the all-or-nothing plan under one batch-wide mode. Every
// row receives a determinate action before any write is attempted.
func (s *Session) Resolve(mode ResolutionMode) (*Plan, error) {
	if s.state != StateDuplicateCheck {
		return nil, ErrWrongState
	}
	s.plan = BuildPlan(s.ID, s.Config.DefaultUnitID, s.drafts, s.report, mode)
	s.state = StateResolved
	return s.plan, nil
}

// Commit hands the resolved plan to the persistence layer. A rejection
// leaves the batch not-committed.
func (s *Session) Commit(ctx context.Context) (CommitResult, error) {
	if s.state != StateResolved {
		return CommitResult{}, ErrWrongState
	}
	result, err := s.leads.CommitBatch(ctx, s.plan)
	if err != nil {
		return CommitResult{}, err
	}
	s.state = StateCommitted

	zap.L().Info("batch committed",
		zap.String("session", s.ID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("ignored", result.Ignored),
	)
	return result, nil
}

// SaveMapping persists the session's resolved header mapping and the
// catalog's custom fields for reuse by future sessions.
func (s *Session) SaveMapping(ctx context.Context) error {
	if s.mapping == nil {
		return ErrWrongState
	}
	merged := make(map[string]string, len(s.persisted)+len(s.mapping))
	for k, v := range s.persisted {
		merged[k] = v
	}
	for k, v := range s.mapping {
		merged[k] = v
	}

	var custom []string
	base := model.DefaultCatalog()
	for _, f := range s.Catalog.Fields {
		if base.ByKey(f.Key) == nil {
			custom = append(custom, f.Key)
		}
	}
	return s.mappings.SaveMapping(ctx, merged, custom)
}
