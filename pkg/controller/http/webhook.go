package http

import (
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/domain/model"
)

// WebhookHandler handles GitHub release webhooks
type WebhookHandler struct {
	secret         []byte
	webhookUC      interfaces.WebhookUseCase
	maxPayloadSize int64
}

// NewWebhookHandler creates a new WebhookHandler. maxPayloadSize <= 0 means
// no limit.
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase, maxPayloadSize int64) *WebhookHandler {
	return &WebhookHandler{
		secret:         []byte(secret),
		webhookUC:      webhookUC,
		maxPayloadSize: maxPayloadSize,
	}
}

// Handle verifies and parses a webhook and hands it to the use case. Release
// events are answered with 202 because the publish run continues after the
// response.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	var reader io.Reader = r.Body
	if h.maxPayloadSize > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxPayloadSize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, r, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(github.SHA256SignatureHeader)
	if err := github.ValidateSignature(signature, body, h.secret); err != nil {
		logger.Warn("Invalid webhook signature", "error", err)
		writeError(w, r, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	eventType := github.WebHookType(r)
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err, "event", eventType)
		writeError(w, r, goerr.Wrap(err, "invalid webhook payload"), http.StatusBadRequest)
		return
	}

	event := &model.WebhookEvent{
		ID:         github.DeliveryID(r),
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	switch e := payload.(type) {
	case *github.ReleaseEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
	case *github.PingEvent:
		event.Type = model.EventTypePing
		event.Sender = e.GetSender().GetLogin()
	default:
		event.Type = model.EventTypeUnknown
	}

	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process webhook event", "error", err, "delivery", event.ID)
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if event.IsSupportedEvent() {
		status = http.StatusAccepted
	}
	writeJSON(w, r, status, map[string]string{
		"status":   "success",
		"delivery": event.ID,
	})
}
