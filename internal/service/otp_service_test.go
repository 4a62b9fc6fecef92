package service_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/testutil"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

var codePattern = regexp.MustCompile(`code is (\d{6})`)

type otpFixture struct {
	otp    service.OTPService
	auth   service.AuthService
	otps   repository.OTPRepository
	mailer *testutil.Mailer
	clock  *testutil.Clock
}

func newOTPFixture(t *testing.T, admins repository.AdminUserRepository) *otpFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	if admins == nil {
		admins = repository.NewAdminUserRepository(db)
	}
	f := &otpFixture{
		otps:   repository.NewOTPRepository(db),
		mailer: &testutil.Mailer{},
		clock:  testutil.NewClock(time.Now()),
	}
	f.otp = service.NewOTPService(f.otps, admins, f.mailer, "ops@example.com", "SNF SEMI", f.clock.Now)
	f.auth = service.NewAuthService(repository.NewAdminUserRepository(db), repository.NewOfferAccessRepository(db))
	return f
}

func (f *otpFixture) requestCode(t *testing.T) string {
	t.Helper()

	if err := f.otp.RequestCode(context.Background()); err != nil {
		t.Fatalf("RequestCode() error = %v", err)
	}
	sent := f.mailer.Sent()
	if len(sent) == 0 {
		t.Fatal("no mail sent")
	}
	last := sent[len(sent)-1]
	if last.To != "ops@example.com" {
		t.Errorf("code mailed to %q", last.To)
	}
	m := codePattern.FindStringSubmatch(last.Body)
	if m == nil {
		t.Fatalf("no code in %q", last.Body)
	}
	return m[1]
}

func otherCode(code string) string {
	b := []byte(code)
	b[0] = '0' + (b[0]-'0'+1)%10
	return string(b)
}

func TestApplyChangeAcceptsCodeOnce(t *testing.T) {
	f := newOTPFixture(t, nil)
	ctx := context.Background()

	code := f.requestCode(t)
	form := &transfer.AccountChangeForm{NewPassword: "brand-new-pass", Code: code}
	if err := f.otp.ApplyChange(ctx, form); err != nil {
		t.Fatalf("ApplyChange() error = %v", err)
	}

	if err := f.auth.Authenticate(ctx, testutil.AdminUsername, "brand-new-pass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if err := f.auth.Authenticate(ctx, testutil.AdminUsername, testutil.AdminPassword); err == nil {
		t.Error("old password still accepted")
	}

	err := f.otp.ApplyChange(ctx, &transfer.AccountChangeForm{NewUsername: "someone", Code: code})
	if !errors.Is(err, service.ErrCodeAlreadyUsed) {
		t.Fatalf("replay: error = %v, want ErrCodeAlreadyUsed", err)
	}
	if service.ReasonOf(err) != "code_already_used" {
		t.Errorf("ReasonOf() = %q", service.ReasonOf(err))
	}
}

func TestApplyChangeRenamesAdmin(t *testing.T) {
	f := newOTPFixture(t, nil)
	ctx := context.Background()

	code := f.requestCode(t)
	if err := f.otp.ApplyChange(ctx, &transfer.AccountChangeForm{NewUsername: "  operator ", Code: " " + code + " "}); err != nil {
		t.Fatalf("ApplyChange() error = %v", err)
	}
	if err := f.auth.Authenticate(ctx, "operator", testutil.AdminPassword); err != nil {
		t.Errorf("renamed admin rejected: %v", err)
	}
}

func TestApplyChangeExpiredCode(t *testing.T) {
	f := newOTPFixture(t, nil)

	code := f.requestCode(t)
	f.clock.Advance(11 * time.Minute)

	err := f.otp.ApplyChange(context.Background(), &transfer.AccountChangeForm{NewPassword: "brand-new-pass", Code: code})
	if !errors.Is(err, service.ErrCodeExpired) {
		t.Fatalf("error = %v, want ErrCodeExpired", err)
	}
}

func TestApplyChangeAtExpiryBoundary(t *testing.T) {
	f := newOTPFixture(t, nil)

	code := f.requestCode(t)
	f.clock.Advance(service.OTPTTL - time.Second)

	if err := f.otp.ApplyChange(context.Background(), &transfer.AccountChangeForm{NewPassword: "brand-new-pass", Code: code}); err != nil {
		t.Fatalf("code inside its window rejected: %v", err)
	}
}

func TestApplyChangeOnlyLatestCodeCounts(t *testing.T) {
	f := newOTPFixture(t, nil)

	first := f.requestCode(t)
	second := f.requestCode(t)
	if first == second {
		t.Skip("two identical random codes")
	}

	err := f.otp.ApplyChange(context.Background(), &transfer.AccountChangeForm{NewPassword: "brand-new-pass", Code: first})
	if !errors.Is(err, service.ErrCodeMismatch) {
		t.Fatalf("error = %v, want ErrCodeMismatch", err)
	}
}

func TestApplyChangeErrorOrder(t *testing.T) {
	tests := []struct {
		name    string
		issue   bool
		form    transfer.AccountChangeForm
		wantErr error
	}{
		{
			name:    "missing code wins over everything",
			form:    transfer.AccountChangeForm{NewPassword: "short"},
			wantErr: service.ErrCodeMissing,
		},
		{
			name:    "nothing to update",
			form:    transfer.AccountChangeForm{Code: "123456"},
			wantErr: service.ErrNothingToUpdate,
		},
		{
			name:    "password too short",
			form:    transfer.AccountChangeForm{NewPassword: "1234567", Code: "123456"},
			wantErr: service.ErrPasswordTooShort,
		},
		{
			name:    "password longer than bcrypt accepts",
			form:    transfer.AccountChangeForm{NewPassword: strings.Repeat("p", 73), Code: "123456"},
			wantErr: service.ErrPasswordTooLong,
		},
		{
			name:    "no code issued",
			form:    transfer.AccountChangeForm{NewUsername: "operator", Code: "123456"},
			wantErr: service.ErrCodeNotFound,
		},
		{
			name:    "wrong code",
			issue:   true,
			form:    transfer.AccountChangeForm{NewUsername: "operator"},
			wantErr: service.ErrCodeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOTPFixture(t, nil)
			form := tt.form
			if tt.issue {
				form.Code = otherCode(f.requestCode(t))
			}

			err := f.otp.ApplyChange(context.Background(), &form)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if service.StatusOf(err) != service.BadRequest {
				t.Errorf("StatusOf() = %d", service.StatusOf(err))
			}
		})
	}
}

func TestApplyChangeLongPasswordKeepsCode(t *testing.T) {
	f := newOTPFixture(t, nil)
	ctx := context.Background()

	code := f.requestCode(t)
	err := f.otp.ApplyChange(ctx, &transfer.AccountChangeForm{NewPassword: strings.Repeat("p", 80), Code: code})
	if !errors.Is(err, service.ErrPasswordTooLong) {
		t.Fatalf("error = %v, want ErrPasswordTooLong", err)
	}
	if service.ReasonOf(err) != "password_too_long" {
		t.Errorf("ReasonOf() = %q", service.ReasonOf(err))
	}

	// 24 three-byte runes: 72 bytes exactly.
	pw := strings.Repeat("한", 24)
	if err := f.otp.ApplyChange(ctx, &transfer.AccountChangeForm{NewPassword: pw, Code: code}); err != nil {
		t.Fatalf("retry: error = %v", err)
	}
	if err := f.auth.Authenticate(ctx, testutil.AdminUsername, pw); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestRequestCodeWithoutMail(t *testing.T) {
	f := newOTPFixture(t, nil)
	f.mailer.Disabled = true

	err := f.otp.RequestCode(context.Background())
	if !errors.Is(err, service.ErrMailUnavailable) {
		t.Fatalf("error = %v, want ErrMailUnavailable", err)
	}

	otp, err := f.otps.Latest(context.Background())
	if err != nil || otp != nil {
		t.Fatalf("a code was stored without mail: %+v, %v", otp, err)
	}
}

type failingAdmins struct {
	repository.AdminUserRepository
}

func (failingAdmins) Update(ctx context.Context, user *models.AdminUser) error {
	return repository.ErrDuplicateUsername
}

func TestApplyChangeConflictBurnsCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admins := failingAdmins{repository.NewAdminUserRepository(db)}
	otps := repository.NewOTPRepository(db)
	mailer := &testutil.Mailer{}
	clock := testutil.NewClock(time.Now())
	s := service.NewOTPService(otps, admins, mailer, "ops@example.com", "SNF SEMI", clock.Now)
	ctx := context.Background()

	if err := s.RequestCode(ctx); err != nil {
		t.Fatal(err)
	}
	code := codePattern.FindStringSubmatch(mailer.Sent()[0].Body)[1]

	err := s.ApplyChange(ctx, &transfer.AccountChangeForm{NewUsername: "taken", Code: code})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if service.StatusOf(err) != service.Conflict {
		t.Errorf("StatusOf() = %d", service.StatusOf(err))
	}

	err = s.ApplyChange(ctx, &transfer.AccountChangeForm{NewUsername: "other", Code: code})
	if !errors.Is(err, service.ErrCodeAlreadyUsed) {
		t.Fatalf("retry: error = %v, want ErrCodeAlreadyUsed", err)
	}
}
