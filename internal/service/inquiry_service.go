package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type InquiryService interface {
	Submit(ctx context.Context, postID int64, includeDrafts bool, form *transfer.BuyerInquiryForm) error
}

type inquiryService struct {
	offers   OfferService
	mailer   Mailer
	to       string
	siteName string
}

func NewInquiryService(offers OfferService, mailer Mailer, to, siteName string) InquiryService {
	return &inquiryService{
		offers:   offers,
		mailer:   mailer,
		to:       to,
		siteName: siteName,
	}
}

// Submit forwards a buyer's message about one offer to the admin mailbox, replying to
// the buyer.
func (s *inquiryService) Submit(ctx context.Context, postID int64, includeDrafts bool, form *transfer.BuyerInquiryForm) error {
	post, err := s.offers.Get(ctx, postID, includeDrafts)
	if err != nil {
		return err
	}

	form.BuyerEmail = strings.TrimSpace(form.BuyerEmail)
	form.Message = strings.TrimSpace(form.Message)
	if err := transfer.Validate(form); err != nil {
		slog.Info(err.Error())
		return invalid(err)
	}

	if !s.mailer.Enabled() || s.to == "" {
		slog.Info("buyer inquiry dropped: mail is not configured", "post_id", postID)
		return ErrMailUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Offer: %s (#%d)\n\n", post.Title, post.ID)
	fmt.Fprintf(&b, "Name: %s\n", form.BuyerName)
	fmt.Fprintf(&b, "Company: %s\n", form.BuyerCompany)
	fmt.Fprintf(&b, "Email: %s\n", form.BuyerEmail)
	fmt.Fprintf(&b, "Phone: %s\n\n", form.BuyerPhone)
	b.WriteString(form.Message)
	b.WriteString("\n")

	return s.mailer.Send(ctx, Envelope{
		To:      s.to,
		ReplyTo: form.BuyerEmail,
		Subject: fmt.Sprintf("[%s] Buyer inquiry: %s", s.siteName, post.Title),
		Body:    b.String(),
	})
}
