package model

import "time"

// ItemImage represents one photo of an item. SortOrder defines the display
// sequence within the item's gallery.
type ItemImage struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
