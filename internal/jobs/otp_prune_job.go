package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/repository"
)

// OTPRetention is how long spent and expired codes are kept for auditing.
const OTPRetention = 7 * 24 * time.Hour

type OTPPruneJob struct {
	or  repository.OTPRepository
	now func() time.Time
}

func NewOTPPruneJob(or repository.OTPRepository) *OTPPruneJob {
	return &OTPPruneJob{
		or:  or,
		now: time.Now,
	}
}

// PruneOTPs deletes codes older than the retention window. The latest code is always
// kept so the account page keeps its notion of "already used".
func (j *OTPPruneJob) PruneOTPs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.or.PruneBefore(ctx, j.now().Add(-OTPRetention))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if n > 0 {
		slog.Info("pruned old otp records", "count", n)
	}
}
