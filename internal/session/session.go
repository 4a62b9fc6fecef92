package session

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AdminCookie = "admin"
	OfferCookie = "offer"

	adminValue = "1"
	issuer     = "snf-semi"
)

// Claims is the verified state carried by a request. Handlers and gates read it and never
// see how it was transported.
type Claims struct {
	Admin         bool
	OfferIssuedAt time.Time
	// OfferPresent is set when an offer cookie arrived, verified or not, so gates know
	// whether there is something to clear.
	OfferPresent bool
}

type valueClaims struct {
	Value string `json:"v"`
	jwt.RegisteredClaims
}

// Signer issues and verifies the signed cookie values.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) sign(value string, now time.Time) (string, error) {
	claims := valueClaims{
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return signed, nil
}

func (s *Signer) verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &valueClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*valueClaims); ok && token.Valid {
		return claims.Value, nil
	}

	return "", errors.New("invalid token")
}

// Load reads both cookies. Unverifiable values are dropped silently.
func (s *Signer) Load(c *fiber.Ctx) Claims {
	var claims Claims

	if raw := c.Cookies(AdminCookie); raw != "" {
		if v, err := s.verify(raw); err == nil && v == adminValue {
			claims.Admin = true
		}
	}

	if raw := c.Cookies(OfferCookie); raw != "" {
		claims.OfferPresent = true
		if v, err := s.verify(raw); err == nil {
			if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
				claims.OfferIssuedAt = time.UnixMilli(ms)
			}
		}
	}

	return claims
}

func (s *Signer) IssueAdmin(c *fiber.Ctx, now time.Time) error {
	value, err := s.sign(adminValue, now)
	if err != nil {
		return err
	}
	c.Cookie(newCookie(AdminCookie, value))
	return nil
}

func (s *Signer) IssueOffer(c *fiber.Ctx, now time.Time) error {
	value, err := s.sign(strconv.FormatInt(now.UnixMilli(), 10), now)
	if err != nil {
		return err
	}
	c.Cookie(newCookie(OfferCookie, value))
	return nil
}

func Clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func newCookie(name, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
