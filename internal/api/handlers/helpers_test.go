package handlers

import (
	"testing"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

func TestContentDisposition(t *testing.T) {
	tests := map[string]string{
		"offer.pdf":       "attachment; filename*=UTF-8''offer.pdf",
		"price list.xlsx": "attachment; filename*=UTF-8''price%20list.xlsx",
		"견적서.pdf":         "attachment; filename*=UTF-8''%EA%B2%AC%EC%A0%81%EC%84%9C.pdf",
		`a"b;c.txt`:       "attachment; filename*=UTF-8''a%22b%3Bc.txt",
	}
	for in, want := range tests {
		if got := contentDisposition(in); got != want {
			t.Errorf("contentDisposition(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithBlankRow(t *testing.T) {
	post := withBlankRow(&models.Post{})
	if post.Offer == nil || len(post.Offer.Items) != 1 {
		t.Fatalf("offer = %+v", post.Offer)
	}

	full := withBlankRow(&models.Post{Offer: &models.Offer{Items: []models.OfferItem{{Desc: "A"}, {Desc: "B"}}}})
	if len(full.Offer.Items) != 2 {
		t.Errorf("existing rows changed: %+v", full.Offer.Items)
	}
}
