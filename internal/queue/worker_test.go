package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/testutil"
)

func mailTask(t *testing.T, env service.Envelope) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(SendMailPayload{Envelope: env})
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(TaskTypeSendMail, payload)
}

func TestHandleSendMailTask(t *testing.T) {
	env := service.Envelope{To: "ops@example.com", Subject: "hi", Body: "body"}

	t.Run("delivers", func(t *testing.T) {
		mailer := &testutil.Mailer{}
		if err := NewQueue(mailer).HandleSendMailTask(context.Background(), mailTask(t, env)); err != nil {
			t.Fatalf("error = %v", err)
		}
		if sent := mailer.Sent(); len(sent) != 1 || sent[0] != env {
			t.Errorf("sent = %+v", sent)
		}
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		task := asynq.NewTask(TaskTypeSendMail, []byte("{"))
		err := NewQueue(&testutil.Mailer{}).HandleSendMailTask(context.Background(), task)
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("error = %v, want SkipRetry", err)
		}
	})

	t.Run("mail not configured is not retried", func(t *testing.T) {
		err := NewQueue(&testutil.Mailer{Disabled: true}).HandleSendMailTask(context.Background(), mailTask(t, env))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("error = %v, want SkipRetry", err)
		}
	})

	t.Run("relay failure is retried", func(t *testing.T) {
		relayErr := errors.New("connection reset")
		err := NewQueue(&testutil.Mailer{Err: relayErr}).HandleSendMailTask(context.Background(), mailTask(t, env))
		if !errors.Is(err, relayErr) || errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("error = %v, want a retryable relay error", err)
		}
	})
}

func TestDeferredMailer(t *testing.T) {
	env := service.Envelope{To: "ops@example.com", Subject: "hi", Body: "body"}

	t.Run("disabled", func(t *testing.T) {
		m := NewDeferredMailer(nil, &testutil.Mailer{Disabled: true})
		if m.Enabled() {
			t.Error("Enabled() = true")
		}
		if err := m.Send(context.Background(), env); !errors.Is(err, service.ErrMailUnavailable) {
			t.Fatalf("error = %v, want ErrMailUnavailable", err)
		}
	})

	t.Run("falls back to inline delivery", func(t *testing.T) {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:1"})
		defer client.Close()

		smtp := &testutil.Mailer{}
		if err := NewDeferredMailer(client, smtp).Send(context.Background(), env); err != nil {
			t.Fatalf("error = %v", err)
		}
		if len(smtp.Sent()) != 1 {
			t.Errorf("inline sends = %d", len(smtp.Sent()))
		}
	})
}
