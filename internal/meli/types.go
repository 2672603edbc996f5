package meli

import (
	"bytes"
	"encoding/json"
)

// ID is a marketplace identifier. The API returns numeric ids for users and
// string ids for items; both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Currency is an entry of GET /currencies/.
type Currency struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	DecimalPlaces int    `json:"decimal_places"`
}

// ListingType is an entry of GET /sites/{site}/listing_types/.
type ListingType struct {
	SiteID string `json:"site_id"`
	ID     string `json:"id"`
	Name   string `json:"name"`
}

// User is the subset of GET /users/me the application reads.
type User struct {
	ID       ID     `json:"id"`
	Nickname string `json:"nickname"`
	SiteID   string `json:"site_id"`
}

// ItemSearch is the response of GET /users/{id}/items/search.
type ItemSearch struct {
	SellerID ID     `json:"seller_id"`
	Results  []ID   `json:"results"`
	Paging   Paging `json:"paging"`
}

// Paging holds search pagination information.
type Paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Item is the subset of GET /items/{id} the application reads.
type Item struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	CategoryID        string  `json:"category_id"`
	Price             float64 `json:"price"`
	CurrencyID        string  `json:"currency_id"`
	AvailableQuantity int     `json:"available_quantity"`
	Condition         string  `json:"condition"`
	Permalink         string  `json:"permalink"`
	Status            string  `json:"status"`
}

// NewItem is the POST /items request body. Field names are fixed by the
// marketplace.
type NewItem struct {
	Title              string `json:"title"`
	CategoryID         string `json:"category_id"`
	Price              string `json:"price"`
	CurrencyID         string `json:"currency_id"`
	AvailableQuantity  *int   `json:"available_quantity"`
	BuyingMode         string `json:"buying_mode"`
	ListingTypeID      string `json:"listing_type_id"`
	Condition          string `json:"condition"`
	Description        string `json:"description"`
	Warranty           string `json:"warranty"`
	AcceptsMercadoPago bool   `json:"accepts_mercadopago"`
	VideoID            string `json:"video_id,omitempty"`
	SellerCustomField  string `json:"seller_custom_field,omitempty"`
}

// CreatedItem is the subset of the POST /items response the application reads.
type CreatedItem struct {
	ID        ID     `json:"id"`
	Permalink string `json:"permalink"`
}
