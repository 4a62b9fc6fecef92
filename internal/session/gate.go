package session

import "time"

// OfferTTL is how long an offer password entry stays good. The boundary itself passes.
const OfferTTL = 30 * time.Minute

type OfferState int

const (
	NoToken OfferState = iota
	ValidFresh
	Expired
	Malformed
)

func (s OfferState) String() string {
	switch s {
	case ValidFresh:
		return "valid"
	case Expired:
		return "expired"
	case Malformed:
		return "malformed"
	}
	return "none"
}

// OfferStateAt classifies the offer claim at now. Issue times in the future are
// treated as malformed.
func OfferStateAt(c Claims, now time.Time) OfferState {
	if !c.OfferPresent {
		return NoToken
	}
	if c.OfferIssuedAt.IsZero() || c.OfferIssuedAt.After(now) {
		return Malformed
	}
	if now.Sub(c.OfferIssuedAt) > OfferTTL {
		return Expired
	}
	return ValidFresh
}

// AllowOffer reports whether the offer catalog is open to the holder of c.
func AllowOffer(c Claims, now time.Time) bool {
	if c.Admin {
		return true
	}
	return OfferStateAt(c, now) == ValidFresh
}
