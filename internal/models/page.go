package models

import (
	"time"
)

// Page represents the stored metadata for an annotatable web page.
// The page body itself is never persisted; callers resupply the full DOM
// with every annotation run.
type Page struct {
	ID          string `json:"id"` // page_{uuid}
	SiteID      string `json:"site_id,omitempty"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
