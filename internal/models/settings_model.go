package models

import "time"

// HomeSettings is the singleton (id=1) row behind the landing page.
type HomeSettings struct {
	HeroTitle    string    `db:"hero_title" json:"hero_title"`
	HeroSubtitle string    `db:"hero_subtitle" json:"hero_subtitle"`
	AboutTitle   string    `db:"about_title" json:"about_title"`
	AboutText    string    `db:"about_text" json:"about_text"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DefaultHeroTitle    = "SNF SEMI"
	DefaultHeroSubtitle = "Welcome"
	DefaultAboutTitle   = "About"
	DefaultAboutText    = "About SNF SEMI"
)

type OfferAccessSettings struct {
	PasswordHash string    `db:"password_hash"`
	UpdatedAt    time.Time `db:"updated_at"`
}
