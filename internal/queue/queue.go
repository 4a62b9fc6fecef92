package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sunghyun0422/snf.semi/internal/service"
)

const maxMailRetry = 5

func EnqueueMail(ctx context.Context, asynqClient *asynq.Client, payload SendMailPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSendMail, taskPayload, asynq.MaxRetry(maxMailRetry), asynq.Timeout(time.Minute))

	info, err := asynqClient.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	slog.Info("mail task enqueued", "id", info.ID, "to", payload.Envelope.To)
	return nil
}

// DeferredMailer hands messages to the task queue instead of sending them inline.
// It is only as enabled as the SMTP mailer the worker will use.
type DeferredMailer struct {
	client *asynq.Client
	smtp   service.Mailer
}

func NewDeferredMailer(client *asynq.Client, smtp service.Mailer) *DeferredMailer {
	return &DeferredMailer{client: client, smtp: smtp}
}

func (m *DeferredMailer) Enabled() bool {
	return m.smtp.Enabled()
}

func (m *DeferredMailer) Send(ctx context.Context, env service.Envelope) error {
	if !m.Enabled() {
		return service.ErrMailUnavailable
	}

	if err := EnqueueMail(ctx, m.client, SendMailPayload{Envelope: env}); err != nil {
		slog.Error("mail enqueue failed, sending inline", "error", err)
		return m.smtp.Send(ctx, env)
	}

	return nil
}
