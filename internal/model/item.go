package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a single listed product available for pickup.
type Item struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	PickupArea  string          `json:"pickup_area"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Item statuses.
const (
	ItemStatusAvailable = "available"
	ItemStatusReserved  = "reserved"
	ItemStatusSold      = "sold"
)

// Item conditions.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionParts   = "parts"
)

// Categories lists the valid item categories in display order.
var Categories = []string{
	"furniture",
	"kitchen",
	"living_room",
	"bedroom",
	"books",
	"electronics",
	"clothing",
	"outdoor",
	"tools",
	"decor",
	"other",
}

// Conditions lists the valid item conditions in display order.
var Conditions = []string{
	ConditionNew,
	ConditionLikeNew,
	ConditionGood,
	ConditionFair,
	ConditionParts,
}

// ValidCategory reports whether category is a known item category.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidCondition reports whether condition is a known item condition.
func ValidCondition(condition string) bool {
	for _, c := range Conditions {
		if c == condition {
			return true
		}
	}
	return false
}

// itemTransitions maps each item status to the statuses it may move to.
// Claiming moves an available item to reserved, cancelling a reservation
// releases it back, and admins may mark items sold or relist sold items.
var itemTransitions = map[string][]string{
	ItemStatusAvailable: {ItemStatusReserved, ItemStatusSold},
	ItemStatusReserved:  {ItemStatusAvailable, ItemStatusSold},
	ItemStatusSold:      {ItemStatusAvailable},
}

// ValidItemTransition reports whether an item may move from one status to
// another. Self-transitions are not valid.
func ValidItemTransition(from, to string) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
