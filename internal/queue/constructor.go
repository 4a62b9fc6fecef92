package queue

import (
	"github.com/sunghyun0422/snf.semi/internal/service"
)

// Queue runs mail tasks pulled off Redis.
type Queue struct {
	mailer service.Mailer
}

func NewQueue(mailer service.Mailer) *Queue {
	return &Queue{
		mailer: mailer,
	}
}

const TaskTypeSendMail = "mail:send"

type SendMailPayload struct {
	Envelope service.Envelope `json:"envelope"`
}
