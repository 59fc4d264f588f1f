package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/db"
	"github.com/anakovac/homesale/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	price, _ := decimal.NewFromString("149.90")
	item, err := CreateItem(ctx, database, "Oak dining table", "Seats six", price, "furniture", model.ConditionGood, "Garage, Maple St")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Status != model.ItemStatusAvailable {
		t.Errorf("expected status 'available', got %q", item.Status)
	}
	if !item.Price.Equal(price) {
		t.Errorf("expected price %s, got %s", price, item.Price)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.Title != "Oak dining table" {
		t.Errorf("expected item roundtrip, got %+v", got)
	}

	missing, err := GetItem(ctx, database, "no-such-id")
	if err != nil {
		t.Fatalf("GetItem missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "Bookshelf", "", decimal.NewFromInt(40), "furniture", model.ConditionGood, "Garage")
	CreateItem(ctx, database, "Kettle", "", decimal.NewFromInt(10), "kitchen", model.ConditionLikeNew, "Garage")
	sold, _ := CreateItem(ctx, database, "Lamp", "", decimal.NewFromInt(15), "decor", model.ConditionFair, "Garage")
	if err := SetItemStatus(ctx, database, sold.ID, model.ItemStatusSold); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}

	all, err := ListItems(ctx, database, "", "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}

	available, _ := ListItems(ctx, database, model.ItemStatusAvailable, "")
	if len(available) != 2 {
		t.Errorf("expected 2 available items, got %d", len(available))
	}

	kitchen, _ := ListItems(ctx, database, "", "kitchen")
	if len(kitchen) != 1 || kitchen[0].Title != "Kettle" {
		t.Errorf("expected only the kettle, got %+v", kitchen)
	}
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Chair", "", decimal.NewFromInt(5), "furniture", model.ConditionFair, "Garage")

	newPrice, _ := decimal.NewFromString("7.50")
	err := UpdateItem(ctx, database, item.ID, "Armchair", "Reupholstered", newPrice, "living_room", model.ConditionGood, "Front porch")
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Title != "Armchair" || got.Category != "living_room" || !got.Price.Equal(newPrice) {
		t.Errorf("update not applied: %+v", got)
	}

	err = UpdateItem(ctx, database, "no-such-id", "X", "", newPrice, "other", model.ConditionGood, "Y")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetItemStatusTransitions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Bike", "", decimal.NewFromInt(80), "outdoor", model.ConditionGood, "Garage")

	// available -> reserved -> sold is legal.
	if err := SetItemStatus(ctx, database, item.ID, model.ItemStatusReserved); err != nil {
		t.Fatalf("available -> reserved: %v", err)
	}
	if err := SetItemStatus(ctx, database, item.ID, model.ItemStatusSold); err != nil {
		t.Fatalf("reserved -> sold: %v", err)
	}

	// sold -> reserved is rejected.
	err := SetItemStatus(ctx, database, item.ID, model.ItemStatusReserved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for sold -> reserved, got %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusSold {
		t.Errorf("rejected transition mutated status to %q", got.Status)
	}
}

func TestToggleSold(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "Mirror", "", decimal.NewFromInt(20), "decor", model.ConditionGood, "Hall")

	status, err := ToggleSold(ctx, database, item.ID)
	if err != nil || status != model.ItemStatusSold {
		t.Fatalf("ToggleSold: status=%q err=%v", status, err)
	}

	status, err = ToggleSold(ctx, database, item.ID)
	if err != nil || status != model.ItemStatusAvailable {
		t.Fatalf("ToggleSold relist: status=%q err=%v", status, err)
	}

	if _, err := ToggleSold(ctx, database, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
