package transfer

import (
	"strings"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

// FormValues is a submitted form, every field kept as the ordered list of its values.
// A field posted once is a one-element list.
type FormValues map[string][]string

func (v FormValues) Get(name string) string {
	if vals := v[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

type OfferForm struct {
	Title       string `validate:"required,max=300"`
	IsPublished bool
	OfferNote   string `validate:"max=20000"`
	Offer       models.Offer
}

func OfferFormFromValues(values FormValues) *OfferForm {
	desc, qty, unit := ItemColumns(values)

	return &OfferForm{
		Title:       strings.TrimSpace(values.Get("title")),
		IsPublished: parseFlag(values.Get("is_published")),
		OfferNote:   values.Get("offer_note"),
		Offer: models.Offer{
			Messrs:       values.Get("messrs"),
			BuyerAddress: values.Get("buyer_address"),
			Date:         values.Get("date"),
			InvoiceNo:    values.Get("invoice_no"),
			Destination:  values.Get("destination"),
			Payment:      values.Get("payment"),
			PriceTerms:   values.Get("price_terms"),
			Shipment:     values.Get("shipment"),
			Origin:       values.Get("origin"),
			Packing:      values.Get("packing"),
			BankInfo:     values.Get("bank_info"),
			Items:        ParseItems(desc, qty, unit),
		},
	}
}

// Post builds the post the form describes. id is zero for a new post.
func (f *OfferForm) Post(id int64) *models.Post {
	offer := f.Offer
	return &models.Post{
		ID:          id,
		Title:       f.Title,
		IsPublished: f.IsPublished,
		Offer:       &offer,
		OfferNote:   f.OfferNote,
	}
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type OfferLoginForm struct {
	Password string `form:"password"`
}

type OfferPasswordForm struct {
	NewPassword        string `form:"new_password" validate:"required,min=4,max=72"`
	NewPasswordConfirm string `form:"new_password_confirm" validate:"eqfield=NewPassword"`
}

type HomeForm struct {
	HeroTitle    string `form:"hero_title"`
	HeroText     string `form:"hero_text"`
	HeroSubtitle string `form:"hero_subtitle"`
	AboutTitle   string `form:"about_title"`
	AboutText    string `form:"about_text"`
}

// Settings returns the submitted values with blanks replaced by the stock copy.
func (f *HomeForm) Settings() *models.HomeSettings {
	return &models.HomeSettings{
		HeroTitle:    orDefault(heroTitle(f), models.DefaultHeroTitle),
		HeroSubtitle: orDefault(f.HeroSubtitle, models.DefaultHeroSubtitle),
		AboutTitle:   orDefault(f.AboutTitle, models.DefaultAboutTitle),
		AboutText:    orDefault(f.AboutText, models.DefaultAboutText),
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

type AccountChangeForm struct {
	NewUsername string `form:"new_username"`
	NewPassword string `form:"new_password"`
	Code        string `form:"code"`
}

type BuyerInquiryForm struct {
	BuyerName    string `form:"buyer_name" validate:"max=200"`
	BuyerCompany string `form:"buyer_company" validate:"max=200"`
	BuyerEmail   string `form:"buyer_email" validate:"required,email,max=320"`
	BuyerPhone   string `form:"buyer_phone" validate:"max=50"`
	Message      string `form:"message" validate:"required,max=10000"`
}
