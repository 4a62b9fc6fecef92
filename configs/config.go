package config

import (
	"fmt"
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// Enabled reports whether attachment bytes should go to the bucket instead of the database.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Config struct {
	Port                 string
	SiteName             string
	DatabaseType         string
	DatabaseURL          string
	DatabaseAuthToken    string
	RedisURI             string
	SecretKey            string
	AdminID              string
	AdminPassword        string
	AdminPasswordHash    string
	OfferDefaultPassword string
	AdminEmail           string
	OTPEmail             string
	SMTP                 SMTP
	R2                   R2
}

func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "3000"),
		SiteName:             getEnv("SITE_NAME", "SNF SEMI"),
		DatabaseType:         getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:          getEnv("DATABASE_URL", "file:data/app.db"),
		DatabaseAuthToken:    getEnv("DATABASE_AUTH_TOKEN", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		SecretKey:            getEnv("COOKIE_SECRET", "snf-semi-secret-key"),
		AdminID:              getEnv("ADMIN_ID", "admin"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "change-me-now"),
		AdminPasswordHash:    getEnv("ADMIN_PASSWORD_HASH", ""),
		OfferDefaultPassword: getEnv("OFFER_DEFAULT_PASSWORD", "offer1234"),
		AdminEmail:           getEnv("ADMIN_EMAIL", ""),
		OTPEmail:             getEnv("OTP_EMAIL", getEnv("ADMIN_EMAIL", "")),
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

// maxSecretBytes is the longest password bcrypt will hash.
const maxSecretBytes = 72

// Validate rejects settings that would make first-run seeding fail on every request.
func (c *Config) Validate() error {
	if c.AdminPasswordHash == "" && len(c.AdminPassword) > maxSecretBytes {
		return fmt.Errorf("ADMIN_PASSWORD is %d bytes, bcrypt accepts at most %d", len(c.AdminPassword), maxSecretBytes)
	}
	if len(c.OfferDefaultPassword) > maxSecretBytes {
		return fmt.Errorf("OFFER_DEFAULT_PASSWORD is %d bytes, bcrypt accepts at most %d", len(c.OfferDefaultPassword), maxSecretBytes)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
