package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Repository journals verified notifications. SaveNotification claims the
// row for processing. A notification is a duplicate when the same order and
// status was already processed or is claimed by another delivery. An
// unprocessed row whose claim was released by MarkFailed, or went stale after
// claimTTL, is handed back so a redelivery can retry it.
type Repository interface {
	SaveNotification(
		ctx context.Context,
		orderNo string,
		orderStatus int,
		virtualAccountNo string,
		payload json.RawMessage,
	) (notificationID int64, isDuplicate bool, err error)

	MarkProcessed(ctx context.Context, notificationID int64) error
	MarkFailed(ctx context.Context, notificationID int64, reason string) error
}

// claimTTL is how long a claim blocks redeliveries when its holder never
// reports back.
const claimTTL = "5 minutes"

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveNotification(
	ctx context.Context,
	orderNo string,
	orderStatus int,
	virtualAccountNo string,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO vbank_notifications (
		order_no,
		order_status,
		virtual_account_no,
		payload,
		processing_started_at
	)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (order_no, order_status)
	DO UPDATE SET
		attempts = vbank_notifications.attempts + 1,
		processing_started_at = now()
	WHERE vbank_notifications.processed_at IS NULL
		AND (
			vbank_notifications.processing_started_at IS NULL
			OR vbank_notifications.processing_started_at < now() - $5::interval
		)
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		orderNo,
		orderStatus,
		virtualAccountNo,
		[]byte(payload),
		claimTTL,
	).Scan(&id)

	if err != nil {
		// conflict on a processed or claimed row returns nothing
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkProcessed(ctx context.Context, notificationID int64) error {
	const q = `
	UPDATE vbank_notifications
	SET processed_at = now(), process_error = NULL, processing_started_at = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID)
	return err
}

func (r *repository) MarkFailed(ctx context.Context, notificationID int64, reason string) error {
	const q = `
	UPDATE vbank_notifications
	SET process_error = $2, processing_started_at = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID, reason)
	return err
}
