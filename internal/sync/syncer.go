package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/models"
	"example.com/daily-budget/backend/internal/notifications"
)

const defaultWindowDays = 30

// ItemDataStore заменяет счета и операции item целиком.
type ItemDataStore interface {
	ReplaceData(ctx context.Context, userID uuid.UUID, itemID string, accounts []models.Account, transactions []models.Transaction) error
}

// Syncer выполняет полную синхронизацию item: счета и операции
// запрашиваются у агрегатора и полностью заменяют сохраненные, без
// инкрементального слияния.
type Syncer struct {
	client     bank.Client
	store      ItemDataStore
	hub        *notifications.Hub
	logger     *slog.Logger
	windowDays int
}

// NewSyncer создает синхронизатор с окном в днях (0 — окно по умолчанию).
func NewSyncer(client bank.Client, store ItemDataStore, hub *notifications.Hub, logger *slog.Logger, windowDays int) *Syncer {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{
		client:     client,
		store:      store,
		hub:        hub,
		logger:     logger,
		windowDays: windowDays,
	}
}

// SyncItem обновляет счета и операции item за окно синхронизации.
// Идемпотентно: повторный вызов приводит хранилище к тому же состоянию.
func (s *Syncer) SyncItem(ctx context.Context, userID uuid.UUID, itemID string) error {
	accounts, err := s.client.ListAccounts(ctx, itemID)
	if err != nil {
		return fmt.Errorf("fetch accounts: %w", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.windowDays)

	transactions, err := s.client.ListTransactions(ctx, itemID, start, end)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	if err := s.store.ReplaceData(ctx, userID, itemID, accounts, transactions); err != nil {
		return fmt.Errorf("replace item data: %w", err)
	}

	s.logger.Info("item synchronized",
		slog.String("item_id", itemID),
		slog.Int("accounts", len(accounts)),
		slog.Int("transactions", len(transactions)))

	s.hub.PublishSyncCompleted(userID, itemID, len(accounts), len(transactions))
	return nil
}
