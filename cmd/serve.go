package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mendesarts/vox2you-import/internal/importer"
	"github.com/mendesarts/vox2you-import/internal/model"
	"github.com/mendesarts/vox2you-import/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP import server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/import/check-duplicates", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phones      []string `json:"phones"`
			ExternalIDs []string `json:"externalIds"`
			UnitID      int64    `json:"unitId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		report, err := st.FindDuplicates(r.Context(), req.Phones, req.ExternalIDs, req.UnitID)
		if err != nil {
			zap.L().Error("duplicate check failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "duplicate check failed")
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/import/mapping", func(w http.ResponseWriter, r *http.Request) {
		mapping, customFields, err := st.LoadMapping(r.Context())
		if err != nil {
			zap.L().Error("load mapping failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "load mapping failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"mapping":      mapping,
			"customFields": customFields,
		})
	})

	r.Post("/import/mapping", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mapping      map[string]string `json:"mapping"`
			CustomFields []string          `json:"customFields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := st.SaveMapping(r.Context(), req.Mapping, req.CustomFields); err != nil {
			zap.L().Error("save mapping failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save mapping failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	})

	r.Post("/import/bulk", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Leads           []*model.LeadDraft `json:"leads"`
			DuplicateAction string             `json:"duplicateAction"`
			UnitID          int64              `json:"unitId"`
			OwnerMap        map[string]int64   `json:"ownerMap"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Leads) == 0 {
			writeError(w, http.StatusBadRequest, "leads is required")
			return
		}
		mode := importer.ResolutionMode(req.DuplicateAction)
		if mode == "" {
			mode = importer.ResolutionIgnore
		}
		if mode != importer.ResolutionIgnore && mode != importer.ResolutionOverwrite {
			writeError(w, http.StatusBadRequest, "duplicateAction must be ignore or overwrite")
			return
		}

		for _, d := range req.Leads {
			if d.ResponsibleID == 0 && d.Responsible != "" {
				if id, ok := req.OwnerMap[d.Responsible]; ok {
					d.ResponsibleID = id
				}
			}
			if d.Stage == "" {
				d.Stage = model.StageNew
			}
			if d.Funnel == "" {
				d.Funnel = model.FunnelCRM
			}
			if !hasTag(d.Tags, model.ImportedTag) {
				d.Tags = append(d.Tags, model.ImportedTag)
			}
			if d.CreatedAt.IsZero() {
				d.CreatedAt = time.Now().UTC()
			}
		}

		phones, externalIDs := importer.CollectKeys(req.Leads)
		report, err := st.FindDuplicates(r.Context(), phones, externalIDs, req.UnitID)
		if err != nil {
			zap.L().Error("duplicate check failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "duplicate check failed")
			return
		}

		plan := importer.BuildPlan(uuid.NewString(), req.UnitID, req.Leads, report, mode)
		result, err := st.CommitBatch(r.Context(), plan)
		if err != nil {
			zap.L().Error("bulk commit failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "commit failed")
			return
		}

		zap.L().Info("bulk import committed",
			zap.String("import", plan.ImportID),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("ignored", result.Ignored),
		)
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
