package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mendesarts/vox2you-import/internal/fetcher"
	"github.com/mendesarts/vox2you-import/internal/importer"
	"github.com/mendesarts/vox2you-import/internal/model"
)

var (
	importFile        string
	importFunnel      string
	importUnit        int64
	importResponsible int64
	importSheet       int
	importOnDuplicate string
	importDryRun      bool
	importSaveMapping bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a spreadsheet export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode := importer.ResolutionMode(importOnDuplicate)
		if mode != importer.ResolutionIgnore && mode != importer.ResolutionOverwrite {
			return eris.Errorf("invalid --on-duplicate value %q (ignore|overwrite)", importOnDuplicate)
		}

		table, err := readTable(importFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		funnel := importFunnel
		if funnel == "" {
			funnel = cfg.Import.Funnel
		}
		unitID := importUnit
		if unitID == 0 {
			unitID = cfg.Import.UnitID
		}
		responsibleID := importResponsible
		if responsibleID == 0 {
			responsibleID = cfg.Import.ResponsibleID
		}

		sess, err := importer.NewSession(ctx, model.SessionConfig{
			TargetFunnel:         model.Funnel(funnel),
			DefaultUnitID:        unitID,
			DefaultResponsibleID: responsibleID,
		}, st, st)
		if err != nil {
			return err
		}

		if err := sess.SetTable(table.Headers, table.Rows); err != nil {
			return err
		}
		if err := sess.ResolveMapping(); err != nil {
			return err
		}

		if pending := sess.PendingResponsibles(); len(pending) > 0 {
			zap.L().Warn("responsible names without a matching user, falling back to the default",
				zap.Strings("names", pending),
			)
			if err := sess.SetResponsibleOverrides(nil); err != nil {
				return err
			}
		}

		if err := sess.Assemble(); err != nil {
			return err
		}

		report, err := sess.CheckDuplicates(ctx)
		if err != nil {
			return err
		}
		printReport(cmd, report)

		if importDryRun {
			cmd.Printf("dry run: %d rows assembled, nothing committed\n", len(sess.Drafts()))
			return nil
		}

		if _, err := sess.Resolve(mode); err != nil {
			return err
		}
		result, err := sess.Commit(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("committed: %d created, %d updated, %d ignored\n",
			result.Created, result.Updated, result.Ignored)

		if importSaveMapping {
			if err := sess.SaveMapping(ctx); err != nil {
				return err
			}
			cmd.Println("header mapping saved")
		}
		return nil
	},
}

func readTable(path string) (*fetcher.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fetcher.ReadCSV(path)
	case ".xlsx":
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetIndex: importSheet})
	default:
		return nil, eris.Errorf("unsupported file type: %s (csv|xlsx)", path)
	}
}

func printReport(cmd *cobra.Command, report model.DuplicateReport) {
	if report.Found == 0 {
		cmd.Println("no duplicates found")
		return
	}
	cmd.Printf("%d duplicate(s) found:\n", report.Found)
	for _, d := range report.Duplicates {
		line := fmt.Sprintf("  #%d %s (%s)", d.LeadID, d.Name, d.Phone)
		if d.Reason == model.MatchExternalID {
			line += " [external id]"
		}
		cmd.Println(line)
	}
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "spreadsheet to import (.csv or .xlsx)")
	importCmd.Flags().StringVar(&importFunnel, "funnel", "", "target funnel: auto, crm, social or internal (default from config)")
	importCmd.Flags().Int64Var(&importUnit, "unit", 0, "default unit id for rows without one")
	importCmd.Flags().Int64Var(&importResponsible, "responsible", 0, "default responsible user id for unresolved rows")
	importCmd.Flags().IntVar(&importSheet, "sheet", 0, "xlsx sheet index")
	importCmd.Flags().StringVar(&importOnDuplicate, "on-duplicate", "ignore", "duplicate resolution: ignore or overwrite")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "assemble and report duplicates without committing")
	importCmd.Flags().BoolVar(&importSaveMapping, "save-mapping", false, "persist the resolved header mapping for future imports")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
