package config

import (
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_TYPE", "DATABASE_URL", "OTP_EMAIL", "ADMIN_EMAIL", "SMTP_HOST", "SMTP_PORT", "R2_ACCOUNT_ID"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Port != "3000" || cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != "file:data/app.db" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SMTP.Port != 587 || cfg.SMTP.Enabled() {
		t.Errorf("smtp = %+v", cfg.SMTP)
	}
	if cfg.R2.Enabled() {
		t.Error("R2 enabled without credentials")
	}
}

func TestLoadConfigOTPEmailFallback(t *testing.T) {
	t.Setenv("OTP_EMAIL", "")
	t.Setenv("ADMIN_EMAIL", "owner@example.com")
	if got := LoadConfig().OTPEmail; got != "owner@example.com" {
		t.Errorf("OTPEmail = %q, want ADMIN_EMAIL", got)
	}

	t.Setenv("OTP_EMAIL", "otp@example.com")
	if got := LoadConfig().OTPEmail; got != "otp@example.com" {
		t.Errorf("OTPEmail = %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	if got := getEnvInt("SMTP_PORT", 25); got != 25 {
		t.Errorf("getEnvInt() = %d", got)
	}
	t.Setenv("SMTP_PORT", "465")
	if got := getEnvInt("SMTP_PORT", 25); got != 465 {
		t.Errorf("getEnvInt() = %d", got)
	}
}

func TestValidateSecretLengths(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{AdminPassword: "change-me-now", OfferDefaultPassword: "offer1234"}},
		{name: "72 bytes", cfg: Config{AdminPassword: strings.Repeat("a", 72), OfferDefaultPassword: strings.Repeat("o", 72)}},
		{
			name:    "long admin password",
			cfg:     Config{AdminPassword: strings.Repeat("a", 73), OfferDefaultPassword: "offer1234"},
			wantErr: "ADMIN_PASSWORD",
		},
		{
			name: "long admin password ignored when a hash is given",
			cfg:  Config{AdminPassword: strings.Repeat("a", 73), AdminPasswordHash: "$2a$10$x", OfferDefaultPassword: "offer1234"},
		},
		{
			name:    "long offer password",
			cfg:     Config{AdminPassword: "change-me-now", OfferDefaultPassword: strings.Repeat("가", 25)},
			wantErr: "OFFER_DEFAULT_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
