package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"ytrelay/internal/api/middleware"
	"ytrelay/internal/config"
	"ytrelay/internal/job"
)

// maxUpstreamBody bounds how much of a workflow response the proxy will read.
const maxUpstreamBody = 8 << 20

// JobsHandler fronts the external workflow engine: job creation and result
// fetches pass through here so the browser only ever talks to the relay.
type JobsHandler struct {
	webhookURL string
	resultURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewJobsHandler constructs the workflow proxy.
func NewJobsHandler(cfg config.WorkflowConfig, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		webhookURL: cfg.WebhookURL,
		resultURL:  cfg.ResultURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// CreateJobRequest is the body the UI submits to start an extraction. The
// token comes from the human-verification widget and is forwarded opaquely.
type CreateJobRequest struct {
	URL   string `json:"url" binding:"required"`
	Token string `json:"token" binding:"required"`
	Lang  string `json:"lang"`
}

// CreateJob forwards a job-creation request to the workflow webhook and
// relays the engine's `{jobId, status, data}` response verbatim.
func (h *JobsHandler) CreateJob(c *gin.Context) {
	log := middleware.LoggerFromContext(c)

	if h.webhookURL == "" {
		Unavailable(c, "workflow engine is not configured")
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "url and token are required")
		return
	}
	if req.Lang == "" {
		req.Lang = "en"
	}

	body, err := json.Marshal(req)
	if err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	target := h.webhookURL + "/subtitle_task"
	upstream, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		log.Error("build workflow request failed", slog.Any("error", err))
		BadGateway(c, "workflow engine unreachable")
		return
	}
	upstream.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(upstream)
	if err != nil {
		log.Error("create job upstream call failed", slog.Any("error", err))
		BadGateway(c, "workflow engine unreachable")
		return
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		log.Error("read workflow response failed", slog.Any("error", err))
		BadGateway(c, "workflow engine response unreadable")
		return
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn("workflow engine rejected job",
			slog.Int("status", resp.StatusCode),
		)
		BadGateway(c, fmt.Sprintf("workflow engine rejected job (status %d)", resp.StatusCode))
		return
	}

	log.Info("job created via workflow engine")
	c.Data(resp.StatusCode, "application/json", payload)
}

// GetJobResult fetches a finished job's transcript from the workflow engine
// and unwraps its `{success, message, data}` envelope.
func (h *JobsHandler) GetJobResult(c *gin.Context) {
	log := middleware.LoggerFromContext(c)

	if h.resultURL == "" {
		Unavailable(c, "workflow engine is not configured")
		return
	}

	videoID, err := job.ParseID(c.Param("videoId"))
	if err != nil {
		BadRequest(c, "invalid video id")
		return
	}

	target := h.resultURL + "/subtitle/" + url.PathEscape(videoID.String())
	upstream, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		log.Error("build workflow request failed", slog.Any("error", err))
		BadGateway(c, "workflow engine unreachable")
		return
	}

	resp, err := h.httpClient.Do(upstream)
	if err != nil {
		log.Error("fetch job result failed", slog.Any("error", err))
		BadGateway(c, "workflow engine unreachable")
		return
	}
	defer resp.Body.Close()

	var envelope job.ResultEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpstreamBody)).Decode(&envelope); err != nil {
		log.Error("decode job result failed", slog.Any("error", err))
		BadGateway(c, "workflow engine response unreadable")
		return
	}

	if !envelope.Success || envelope.Data == nil {
		msg := envelope.Message
		if msg == "" {
			msg = "job result not available"
		}
		NotFound(c, msg)
		return
	}

	c.JSON(http.StatusOK, envelope.Data)
}
