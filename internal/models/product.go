package models

import (
	"encoding/json"
	"time"
)

// Ref points at a category or brand by id and display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawProduct is a product node exactly as the remote API returned it.
// Price and OriginalPrice are kept raw so that malformed values can be
// detected instead of silently decoding to zero.
type RawProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         json.RawMessage `json:"price"`
	OriginalPrice json.RawMessage `json:"originalPrice,omitempty"`
	Stock         int             `json:"stock"`
	IsFeatured    bool            `json:"isFeatured"`
	Category      *Ref            `json:"category,omitempty"`
	Brand         *Ref            `json:"brand,omitempty"`
	Image         string          `json:"image,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

type Product struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	OriginalPrice *float64   `json:"originalPrice,omitempty"`
	Stock         int        `json:"stock"`
	IsFeatured    bool       `json:"isFeatured"`
	Category      *Ref       `json:"category,omitempty"`
	Brand         *Ref       `json:"brand,omitempty"`
	Image         string     `json:"image,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// HasDiscount reports whether the product is sold below its original price.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// CategoryID returns the referenced category id, or "" when absent.
func (p Product) CategoryID() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.ID
}

// BrandID returns the referenced brand id, or "" when absent.
func (p Product) BrandID() string {
	if p.Brand == nil {
		return ""
	}
	return p.Brand.ID
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Retry   string `json:"retry,omitempty"`
}
