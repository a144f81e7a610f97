package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"vbank-adapter/internal/logger"

	"go.uber.org/zap"
)

// maxBodyBytes caps a notification body.
const maxBodyBytes = 1 << 20

// Acknowledgement is the body the gateway expects for an accepted notification.
const Acknowledgement = "success"

// Processor applies a verified notification to the host platform.
type Processor interface {
	Process(ctx context.Context, n *PaymentNotification) error
}

type ProcessorFunc func(ctx context.Context, n *PaymentNotification) error

func (f ProcessorFunc) Process(ctx context.Context, n *PaymentNotification) error {
	return f(ctx, n)
}

// Handler depends on the verifier, an optional journal and the processor
type Handler struct {
	Verifier  *Verifier
	Repo      Repository
	Processor Processor
}

// NewHandler builds the notification endpoint. repo may be nil, in which case
// nothing is journaled and redeliveries are processed again.
func NewHandler(v *Verifier, repo Repository, p Processor) *Handler {
	return &Handler{
		Verifier:  v,
		Repo:      repo,
		Processor: p,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Read and parse the body
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read notification body", zap.Error(err))
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	n, err := ParseNotification(body)
	if err != nil {
		log.Warn("invalid notification payload", zap.Error(err))
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 2. Verify before trusting any field
	valid, err := h.Verifier.Verify(n)
	if err != nil {
		log.Error("cannot verify notification", zap.Error(err))
		http.Error(w, "verification unavailable", http.StatusInternalServerError)
		return
	}
	if !valid {
		log.Warn("rejected notification with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payment PaymentNotification
	if err := n.Decode(&payment); err != nil {
		log.Warn("verified notification has unexpected shape", zap.Error(err))
		http.Error(w, "invalid notification fields", http.StatusBadRequest)
		return
	}
	payment.Raw = body

	ctx = logger.WithFields(ctx,
		zap.String("order_no", payment.OrderNo),
		zap.String("virtual_account_no", payment.VirtualAccountNo),
		zap.Int("order_status", payment.OrderStatus),
	)
	log = logger.FromCtx(ctx)

	// 3. Journal, skipping redeliveries already processed
	var journalID int64
	if h.Repo != nil {
		id, isDuplicate, err := h.Repo.SaveNotification(ctx, payment.OrderNo, payment.OrderStatus, payment.VirtualAccountNo, body)
		if err != nil {
			log.Error("failed to journal notification", zap.Error(err))
			http.Error(w, "failed to store notification", http.StatusInternalServerError)
			return
		}
		if isDuplicate {
			log.Info("duplicate notification ignored")
			acknowledge(w)
			return
		}
		journalID = id
	}

	// 4. Hand over to the platform
	if h.Processor != nil {
		if err := h.Processor.Process(ctx, &payment); err != nil {
			log.Error("failed to process notification", zap.Error(err))
			h.markFailed(ctx, journalID, err)
			http.Error(w, "failed to process notification", http.StatusInternalServerError)
			return
		}
	}

	if h.Repo != nil {
		if err := h.Repo.MarkProcessed(ctx, journalID); err != nil {
			log.Error("failed to mark notification processed", zap.Int64("notification_id", journalID), zap.Error(err))
		}
	}

	log.Info("notification accepted", zap.String("amount", payment.OrderAmount.String()))
	acknowledge(w)
}

func (h *Handler) markFailed(ctx context.Context, id int64, cause error) {
	if h.Repo == nil {
		return
	}
	if err := h.Repo.MarkFailed(ctx, id, cause.Error()); err != nil {
		logger.FromCtx(ctx).Error("failed to mark notification failed",
			zap.Int64("notification_id", id),
			zap.Error(errors.Join(cause, err)),
		)
	}
}

func acknowledge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, Acknowledgement)
}
