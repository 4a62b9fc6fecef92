package transfer

import (
	"strings"
	"testing"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

func TestOfferFormFromValues(t *testing.T) {
	values := FormValues{
		"title":        {"  April offer  "},
		"is_published": {"on"},
		"offer_note":   {"Valid for 7 days"},
		"messrs":       {"ACME"},
		"invoice_no":   {"INV-1"},
		"item_desc[]":  {"A", "", "B"},
		"item_qty[]":   {"1", "", ""},
		"item_unit[]":  {"ea", "", ""},
	}

	form := OfferFormFromValues(values)
	if form.Title != "April offer" {
		t.Errorf("Title = %q", form.Title)
	}
	if !form.IsPublished {
		t.Error("expected IsPublished")
	}
	if form.Offer.Messrs != "ACME" || form.Offer.InvoiceNo != "INV-1" {
		t.Errorf("offer header = %+v", form.Offer)
	}
	if len(form.Offer.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(form.Offer.Items))
	}

	post := form.Post(7)
	if post.ID != 7 || post.Title != "April offer" || post.OfferNote != "Valid for 7 days" {
		t.Errorf("post = %+v", post)
	}
	post.Offer.Messrs = "changed"
	if form.Offer.Messrs != "ACME" {
		t.Error("Post() must not share the offer with the form")
	}
}

func TestParseFlag(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"on":    true,
		"TRUE":  true,
		"yes":   true,
		"":      false,
		"0":     false,
		"off":   false,
		"maybe": false,
	}
	for in, want := range tests {
		if got := parseFlag(in); got != want {
			t.Errorf("parseFlag(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHomeFormSettings(t *testing.T) {
	tests := []struct {
		name string
		form HomeForm
		want models.HomeSettings
	}{
		{
			name: "all blank gives stock copy",
			form: HomeForm{HeroTitle: " ", AboutText: ""},
			want: models.HomeSettings{
				HeroTitle:    models.DefaultHeroTitle,
				HeroSubtitle: models.DefaultHeroSubtitle,
				AboutTitle:   models.DefaultAboutTitle,
				AboutText:    models.DefaultAboutText,
			},
		},
		{
			name: "hero_text stands in for hero_title",
			form: HomeForm{HeroText: "Semiconductors", AboutTitle: "Us"},
			want: models.HomeSettings{
				HeroTitle:    "Semiconductors",
				HeroSubtitle: models.DefaultHeroSubtitle,
				AboutTitle:   "Us",
				AboutText:    models.DefaultAboutText,
			},
		},
		{
			name: "hero_title wins",
			form: HomeForm{HeroTitle: "Title", HeroText: "Text", HeroSubtitle: "Sub", AboutText: "Body"},
			want: models.HomeSettings{
				HeroTitle:    "Title",
				HeroSubtitle: "Sub",
				AboutTitle:   models.DefaultAboutTitle,
				AboutText:    "Body",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Settings()
			if *got != tt.want {
				t.Errorf("Settings() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    any
		wantErr string
	}{
		{
			name:    "missing title",
			form:    &OfferForm{},
			wantErr: "Title is required.",
		},
		{
			name:    "title too long",
			form:    &OfferForm{Title: strings.Repeat("x", 301)},
			wantErr: "Title must be at most 300 characters.",
		},
		{
			name: "valid offer",
			form: &OfferForm{Title: "Offer"},
		},
		{
			name:    "short offer password",
			form:    &OfferPasswordForm{NewPassword: "abc", NewPasswordConfirm: "abc"},
			wantErr: "New password must be at least 4 characters.",
		},
		{
			name:    "confirmation mismatch",
			form:    &OfferPasswordForm{NewPassword: "abcd", NewPasswordConfirm: "abce"},
			wantErr: "Password confirmation does not match.",
		},
		{
			name:    "bad buyer email",
			form:    &BuyerInquiryForm{BuyerEmail: "not-an-email", Message: "hi"},
			wantErr: "Email must be a valid email address.",
		},
		{
			name:    "missing message",
			form:    &BuyerInquiryForm{BuyerEmail: "buyer@example.com"},
			wantErr: "Message is required.",
		},
		{
			name: "valid inquiry",
			form: &BuyerInquiryForm{BuyerEmail: "buyer@example.com", Message: "Price for 1k?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
