package models

import "time"

type Post struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	Offer       *Offer    `db:"offer_json" json:"offer"`
	OfferNote   string    `db:"offer_note" json:"offer_note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Offer is the offer sheet stored as JSON in posts.offer_json.
// The JSON keys match the sheets already stored by earlier versions of the site.
type Offer struct {
	Messrs       string      `json:"messrs"`
	BuyerAddress string      `json:"buyer_address"`
	Date         string      `json:"date"`
	InvoiceNo    string      `json:"invoice_no"`
	Destination  string      `json:"destination"`
	Payment      string      `json:"payment"`
	PriceTerms   string      `json:"price_terms"`
	Shipment     string      `json:"shipment"`
	Origin       string      `json:"origin"`
	Packing      string      `json:"packing"`
	BankInfo     string      `json:"bank_info"`
	Items        []OfferItem `json:"items"`
}

type OfferItem struct {
	Desc string `json:"desc"`
	Qty  string `json:"qty"`
	Unit string `json:"unit"`
}

type Attachment struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	Filename  string    `db:"filename"`
	MimeType  string    `db:"mime_type"`
	Size      int64     `db:"size_bytes"`
	Data      []byte    `db:"data"`
	ObjectKey string    `db:"object_key"`
	CreatedAt time.Time `db:"created_at"`
}

type PostFilter int

const (
	PublishedOnly PostFilter = iota
	AllPosts
)
