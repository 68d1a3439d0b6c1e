package api

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/modguard/promptgate/internal/alert"
	"github.com/modguard/promptgate/internal/analyzer"
	"github.com/modguard/promptgate/internal/api/middleware"
	"github.com/modguard/promptgate/internal/cache"
	"github.com/modguard/promptgate/internal/config"
	"github.com/modguard/promptgate/internal/models"
	"github.com/rs/zerolog"
)

// LogStore is the audit log persistence the handler depends on.
type LogStore interface {
	Append(ctx context.Context, record models.LogRecord) error
	List(ctx context.Context) ([]models.LogRecord, error)
	Clear(ctx context.Context) error
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type LogsResponse struct {
	Logs []models.LogRecord `json:"logs"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	pipeline  *analyzer.Pipeline
	cache     *cache.Cache
	store     LogStore
	notifier  alert.Notifier
	settings  *config.Settings
	staticDir string
	logger    *zerolog.Logger
}

func NewHandler(
	pipeline *analyzer.Pipeline,
	decisionCache *cache.Cache,
	store LogStore,
	notifier alert.Notifier,
	settings *config.Settings,
	staticDir string,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		pipeline:  pipeline,
		cache:     decisionCache,
		store:     store,
		notifier:  notifier,
		settings:  settings,
		staticDir: staticDir,
		logger:    logger,
	}
}

// POST /check_prompt
// Body: PromptRequest
// Returns: AnalysisResult
//
// The analysis itself is memoized by prompt text; the audit log row and the
// verdict alert are written on every request, cache hit or not, so the log
// stays a complete record of what reached the gateway.
func (h *Handler) CheckPrompt(req *restful.Request, resp *restful.Response) {
	var promptRequest models.PromptRequest
	if err := req.ReadEntity(&promptRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	result := h.cache.GetOrCompute(ctx, promptRequest.Text, h.pipeline.Analyze)

	h.logger.Info().
		Str("status", string(result.Status)).
		Int("reasons", len(result.Reasons)).
		Msg("Prompt checked")

	// Best-effort: a failed log write is an operator problem, not a caller
	// problem.
	if err := h.store.Append(ctx, toLogRecord(result)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write audit log record")
	}

	if result.Status != models.VerdictSafe {
		h.notifier.Notify(result)
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /get_logs
func (h *Handler) GetLogs(req *restful.Request, resp *restful.Response) {
	records, err := h.store.List(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to retrieve audit log")
		resp.WriteHeaderAndEntity(http.StatusOK, LogsResponse{Logs: []models.LogRecord{}})
		return
	}

	if records == nil {
		records = []models.LogRecord{}
	}
	resp.WriteHeaderAndEntity(http.StatusOK, LogsResponse{Logs: records})
}

// POST /clear_logs
func (h *Handler) ClearLogs(req *restful.Request, resp *restful.Response) {
	if err := h.store.Clear(req.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear audit log")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, MessageResponse{Message: "All log records deleted"})
}

// POST /update_mode
// Advisory only: the mode is acknowledged and logged, nothing changes
// server-side behavior yet.
func (h *Handler) UpdateMode(req *restful.Request, resp *restful.Response) {
	var modeUpdate models.ModeUpdate
	if err := req.ReadEntity(&modeUpdate); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().Str("mode", modeUpdate.Mode).Msg("Compliance mode updated")

	resp.WriteHeaderAndEntity(http.StatusOK, MessageResponse{
		Message: "Mode successfully updated to " + modeUpdate.Mode,
	})
}

// GET /get_settings
func (h *Handler) GetSettings(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, h.settings)
}

// GET /
func (h *Handler) Index(req *restful.Request, resp *restful.Response) {
	http.ServeFile(resp.ResponseWriter, req.Request, filepath.Join(h.staticDir, "index.html"))
}

// GET /health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func toLogRecord(result models.AnalysisResult) models.LogRecord {
	record := models.LogRecord{
		Prompt:    result.Prompt,
		Status:    result.Status,
		Reasons:   result.Reasons,
		Timestamp: time.Now().UTC(),
	}
	if result.RedactedPrompt != "" {
		redacted := result.RedactedPrompt
		record.RedactedPrompt = &redacted
	}
	if result.DownstreamResponse != "" {
		response := result.DownstreamResponse
		record.DownstreamResponse = &response
	}
	return record
}
