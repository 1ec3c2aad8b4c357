package handler

import (
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/errors"
	"github.com/johnquangdev/consult-review/internal/adapter/dto/webhook"
	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/internal/usecase/review"
	"github.com/johnquangdev/consult-review/pkg/ai"
	"github.com/johnquangdev/consult-review/pkg/metrics"
	"github.com/johnquangdev/consult-review/pkg/validator"
)

// Zoom signature headers
const (
	HeaderSignature = "x-zm-signature"
	HeaderTimestamp = "x-zm-request-timestamp"
)

const maxBodyBytes = 1 << 20

// Intake outcomes, used as metric labels
const (
	outcomeHandshake  = "handshake"
	outcomeIgnored    = "ignored"
	outcomeAccepted   = "accepted"
	outcomeInProgress = "in_progress"
	outcomeRejected   = "rejected"
)

// JobSubmitter enqueues review jobs
type JobSubmitter interface {
	Submit(job *entities.ReviewJob) error
}

// WebhookOptions configure intake
type WebhookOptions struct {
	Secret           string
	VerifySignature  bool
	SignatureMaxSkew time.Duration
	Events           []string
	AudioEnabled     bool
}

// WebhookHandler handles conferencing platform webhook events
type WebhookHandler struct {
	registry  review.Registry
	submitter JobSubmitter
	opts      WebhookOptions
	events    map[string]bool
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(registry review.Registry, submitter JobSubmitter, opts WebhookOptions, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	events := make(map[string]bool, len(opts.Events))
	for _, e := range opts.Events {
		events[e] = true
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		registry:  registry,
		submitter: submitter,
		opts:      opts,
		events:    events,
		metrics:   m,
		logger:    logger,
	}
}

// HandleZoomWebhook answers the endpoint handshake and turns recording
// events into background review jobs. It never waits for the review.
func (h *WebhookHandler) HandleZoomWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return h.reject(c, "", errors.ErrInvalidPayload())
	}

	var req webhook.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return h.reject(c, "", errors.ErrInvalidPayload())
	}

	if req.IsURLValidation() {
		return h.handshake(c, req)
	}

	if err := c.Validate(&req); err != nil {
		return h.reject(c, req.Event, errors.ErrInvalidArgument(validator.FirstFieldError(err)))
	}

	if h.opts.VerifySignature {
		if h.opts.Secret == "" {
			return h.reject(c, req.Event, errors.ErrSecretNotConfigured())
		}
		r := c.Request()
		if !ai.VerifyRequestSignature(h.opts.Secret, r.Header.Get(HeaderTimestamp), body, r.Header.Get(HeaderSignature), h.opts.SignatureMaxSkew) {
			return h.reject(c, req.Event, errors.ErrInvalidSignature())
		}
	}

	if !h.events[req.Event] {
		return h.ignore(c, req.Event, "event not handled")
	}

	var payload webhook.RecordingPayload
	if len(req.Payload) == 0 || json.Unmarshal(req.Payload, &payload) != nil {
		return h.reject(c, req.Event, errors.ErrInvalidPayload())
	}

	identity := payload.Object.Identity()
	if identity.EntityID == "" {
		return h.reject(c, req.Event, errors.ErrInvalidArgument(entities.ErrMissingEntityID.Error()))
	}

	file, ok := webhook.SelectFile(payload.Object.RecordingFiles, h.opts.AudioEnabled)
	if !ok {
		return h.ignore(c, req.Event, "no completed file of an accepted type")
	}
	if file.DownloadURL == "" {
		return h.reject(c, req.Event, errors.ErrMissingRecordingURL())
	}

	job := entities.NewReviewJob(req.Event, identity, file.Reference(req.Token(payload)))
	return h.enqueue(c, job)
}

func (h *WebhookHandler) handshake(c echo.Context, req webhook.Request) error {
	if h.opts.Secret == "" {
		return h.reject(c, req.Event, errors.ErrSecretNotConfigured())
	}

	var payload webhook.URLValidationPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return h.reject(c, req.Event, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&payload); err != nil {
		return h.reject(c, req.Event, errors.ErrInvalidArgument(validator.FirstFieldError(err)))
	}

	h.count(req.Event, outcomeHandshake)
	h.logger.Info("🤝 Endpoint validation answered")
	return c.JSON(http.StatusOK, webhook.URLValidationResponse{
		PlainToken:     payload.PlainToken,
		EncryptedToken: ai.SignToken(h.opts.Secret, payload.PlainToken),
	})
}

func (h *WebhookHandler) enqueue(c echo.Context, job *entities.ReviewJob) error {
	ctx := c.Request().Context()
	key := job.EntityKey()
	log := h.logger.With(
		zap.String("entity_id", key),
		zap.String("event", job.Event),
		zap.String("file_type", string(job.Download.FileType)),
	)

	acquired, err := h.registry.TryAcquire(ctx, key)
	if err != nil {
		return h.reject(c, job.Event, errors.ErrCacheFailed("acquire", err))
	}
	if !acquired {
		h.count(job.Event, outcomeInProgress)
		log.Info("⏳ Review already in progress")
		return c.JSON(http.StatusOK, webhook.StatusResponse{Status: entities.IntakeStatusInProgress})
	}

	if err := h.submitter.Submit(job); err != nil {
		// The claim is still ours when the queue refuses the job
		if rerr := h.registry.Release(ctx, key); rerr != nil {
			log.Error("❌ Failed to release entity", zap.Error(rerr))
		}
		if stdErrors.Is(err, entities.ErrQueueFull) || stdErrors.Is(err, entities.ErrDispatcherStopped) ||
			stdErrors.Is(err, entities.ErrDispatcherNotStarted) {
			return h.reject(c, job.Event, errors.ErrQueueFull())
		}
		return h.reject(c, job.Event, errors.ErrProcessingFailed(err))
	}

	h.count(job.Event, outcomeAccepted)
	log.Info("📨 Review job queued", zap.String("job_id", job.ID.String()))
	return c.JSON(http.StatusAccepted, webhook.StatusResponse{
		Status: entities.IntakeStatusProcessingStarted,
		JobID:  job.ID.String(),
	})
}

func (h *WebhookHandler) ignore(c echo.Context, event, reason string) error {
	h.count(event, outcomeIgnored)
	h.logger.Info("⏭️ Webhook ignored", zap.String("event", event), zap.String("reason", reason))
	return c.JSON(http.StatusOK, webhook.MessageResponse{Message: entities.IntakeStatusIgnored})
}

func (h *WebhookHandler) reject(c echo.Context, event string, err error) error {
	h.count(event, outcomeRejected)
	return HandleError(h.logger, c, err)
}

func (h *WebhookHandler) count(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	h.metrics.WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}
