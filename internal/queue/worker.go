package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/sunghyun0422/snf.semi/internal/service"
)

func (j *Queue) HandleSendMailTask(ctx context.Context, task *asynq.Task) error {
	var payload SendMailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	err := j.mailer.Send(ctx, payload.Envelope)
	if errors.Is(err, service.ErrMailUnavailable) {
		slog.Info("mail task dropped: mail is not configured", "to", payload.Envelope.To)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
