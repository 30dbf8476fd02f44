package link

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/models"
)

// TestManagerRefreshStatuses проверяет подтягивание out-of-band статусов
// из агрегатора.
func TestManagerRefreshStatuses(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	store.items["item-1"] = models.BankLinkItem{ItemID: "item-1", UserID: userID, Status: models.ItemStatusHealthy}
	store.items["item-2"] = models.BankLinkItem{ItemID: "item-2", UserID: userID, Status: models.ItemStatusHealthy}

	client := &fakeClient{items: []bank.ItemStatusRecord{
		{ItemID: "item-1", Status: models.ItemStatusLoginRequired},
		{ItemID: "item-2", Status: models.ItemStatusHealthy},
		{ItemID: "unknown-item", Status: models.ItemStatusError},
	}}

	manager := NewManager(client, store, &fakeSyncer{}, nil, nil)
	if err := manager.RefreshStatuses(context.Background(), userID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if store.items["item-1"].Status != models.ItemStatusLoginRequired {
		t.Fatalf("expected login_required, got %s", store.items["item-1"].Status)
	}
	if store.items["item-2"].Status != models.ItemStatusHealthy {
		t.Fatalf("expected healthy, got %s", store.items["item-2"].Status)
	}
}

// TestManagerSeparateMachinesPerUser проверяет, что handshake одного
// пользователя не блокирует другого.
func TestManagerSeparateMachinesPerUser(t *testing.T) {
	manager := NewManager(&fakeClient{}, newFakeStore(), &fakeSyncer{}, nil, nil)

	first := uuid.New()
	second := uuid.New()

	if _, err := manager.Connect(context.Background(), first); err != nil {
		t.Fatalf("first connect failed: %v", err)
	}
	if _, err := manager.Connect(context.Background(), second); err != nil {
		t.Fatalf("second user connect failed: %v", err)
	}

	if manager.MachineState(first) != StateUserConsenting {
		t.Fatalf("expected user_consenting, got %s", manager.MachineState(first))
	}
}
