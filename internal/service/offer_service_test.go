package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/testutil"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func newOfferService(t *testing.T, store service.ObjectStore) (service.OfferService, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return service.NewOfferService(repository.NewPostRepository(db), repository.NewAttachmentRepository(db), store), db
}

func offerForm(title string, published bool) *transfer.OfferForm {
	return &transfer.OfferForm{
		Title:       title,
		IsPublished: published,
		Offer: models.Offer{
			Messrs: "ACME",
			Items:  []models.OfferItem{{Desc: "Wafer", Qty: "10", Unit: "USD 3"}},
		},
	}
}

func countAttachments(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM post_attachments").Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestOfferAttachmentRoundTrip(t *testing.T) {
	stores := map[string]service.ObjectStore{
		"database":     nil,
		"object store": testutil.NewObjectStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			s, _ := newOfferService(t, store)
			ctx := context.Background()

			data := []byte("0123456789")
			postID, err := s.Create(ctx, offerForm("Offer", true), []service.Upload{
				{Filename: "price list.txt", MimeType: "text/plain", Size: int64(len(data)), Data: data},
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			list, err := s.ListAttachments(ctx, postID)
			if err != nil || len(list) != 1 {
				t.Fatalf("ListAttachments() = %v, %v", list, err)
			}

			a, err := s.GetAttachment(ctx, list[0].ID, false)
			if err != nil {
				t.Fatalf("GetAttachment() error = %v", err)
			}
			if !bytes.Equal(a.Data, data) || a.Size != 10 || a.MimeType != "text/plain" || a.Filename != "price list.txt" {
				t.Errorf("attachment = %+v", a)
			}
		})
	}
}

func TestOfferDeleteRemovesAttachments(t *testing.T) {
	store := testutil.NewObjectStore()
	s, db := newOfferService(t, store)
	ctx := context.Background()

	postID, err := s.Create(ctx, offerForm("Offer", true), []service.Upload{
		{Filename: "a.txt", MimeType: "text/plain", Size: 1, Data: []byte("a")},
		{Filename: "b.txt", MimeType: "text/plain", Size: 1, Data: []byte("b")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if countAttachments(t, db) != 2 || len(store.Objects) != 2 {
		t.Fatalf("expected 2 stored attachments")
	}

	if err := s.Delete(ctx, postID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := countAttachments(t, db); n != 0 {
		t.Errorf("%d attachment rows left", n)
	}
	if len(store.Objects) != 0 {
		t.Errorf("%d objects left", len(store.Objects))
	}
	if _, err := s.Get(ctx, postID, true); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Get() after delete = %v", err)
	}
	if err := s.Delete(ctx, postID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second Delete() = %v", err)
	}
}

func TestOfferCreateRejectsOversize(t *testing.T) {
	s, db := newOfferService(t, nil)

	_, err := s.Create(context.Background(), offerForm("Offer", true), []service.Upload{
		{Filename: "big.bin", Size: service.MaxAttachmentSize + 1},
	})
	if !errors.Is(err, service.ErrOversizeUpload) {
		t.Fatalf("error = %v, want ErrOversizeUpload", err)
	}

	var posts int
	db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&posts)
	if posts != 0 {
		t.Errorf("%d posts written for a rejected form", posts)
	}
}

func TestOfferCreateValidation(t *testing.T) {
	s, _ := newOfferService(t, nil)

	_, err := s.Create(context.Background(), offerForm("", true), nil)
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if got := service.Message(err); got != "Title is required." {
		t.Errorf("Message() = %q", got)
	}
}

func TestOfferSniffsMime(t *testing.T) {
	s, _ := newOfferService(t, nil)
	ctx := context.Background()

	postID, err := s.Create(ctx, offerForm("Offer", true), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		declared string
		data     []byte
		want     string
	}{
		{"", pngHeader, "image/png"},
		{"application/octet-stream", pngHeader, "image/png"},
		{"image/x-custom", pngHeader, "image/x-custom"},
		{"", []byte("plain words"), "application/octet-stream"},
	}

	for _, tt := range tests {
		id, err := s.AddAttachment(ctx, postID, service.Upload{Filename: "f", MimeType: tt.declared, Size: int64(len(tt.data)), Data: tt.data})
		if err != nil {
			t.Fatal(err)
		}
		a, _ := s.GetAttachment(ctx, id, true)
		if a.MimeType != tt.want {
			t.Errorf("declared %q: mime = %q, want %q", tt.declared, a.MimeType, tt.want)
		}
	}
}

func TestOfferDraftVisibility(t *testing.T) {
	s, _ := newOfferService(t, nil)
	ctx := context.Background()

	postID, err := s.Create(ctx, offerForm("Draft", false), []service.Upload{
		{Filename: "a.txt", MimeType: "text/plain", Size: 1, Data: []byte("a")},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, postID, false); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("visitor Get() = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, postID, true); err != nil {
		t.Errorf("admin Get() = %v", err)
	}

	list, _ := s.ListAttachments(ctx, postID)
	if _, err := s.GetAttachment(ctx, list[0].ID, false); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("visitor GetAttachment() = %v, want ErrNotFound", err)
	}

	published, _ := s.List(ctx, models.PublishedOnly)
	if len(published) != 0 {
		t.Errorf("draft listed publicly")
	}

	if err := s.TogglePublished(ctx, postID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, postID, false); err != nil {
		t.Errorf("published Get() = %v", err)
	}
	if err := s.TogglePublished(ctx, postID+1); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("TogglePublished(missing) = %v", err)
	}
}

func TestOfferUpdateAndDeleteAttachment(t *testing.T) {
	s, _ := newOfferService(t, nil)
	ctx := context.Background()

	postID, err := s.Create(ctx, offerForm("Offer", true), nil)
	if err != nil {
		t.Fatal(err)
	}

	form := offerForm("Offer v2", true)
	form.OfferNote = "updated"
	err = s.Update(ctx, postID, form, []service.Upload{{Filename: "c.txt", MimeType: "text/plain", Size: 1, Data: []byte("c")}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	post, _ := s.Get(ctx, postID, true)
	if post.Title != "Offer v2" || post.OfferNote != "updated" {
		t.Errorf("post = %+v", post)
	}

	list, _ := s.ListAttachments(ctx, postID)
	if len(list) != 1 {
		t.Fatalf("attachments = %d", len(list))
	}
	owner, err := s.DeleteAttachment(ctx, list[0].ID)
	if err != nil || owner != postID {
		t.Fatalf("DeleteAttachment() = %d, %v", owner, err)
	}
	if _, err := s.DeleteAttachment(ctx, list[0].ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second DeleteAttachment() = %v", err)
	}

	if err := s.Update(ctx, postID+1, form, nil); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Update(missing) = %v", err)
	}
}
