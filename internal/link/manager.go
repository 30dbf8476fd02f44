package link

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/notifications"
)

// Manager держит по одному автомату подключения на пользователя и
// лениво их создает. Consent-поверхность на пользователя одна, поэтому
// и автомат один.
type Manager struct {
	mu       sync.Mutex
	machines map[uuid.UUID]*Machine

	client bank.Client
	items  ItemStore
	syncer Syncer
	hub    *notifications.Hub
	logger *slog.Logger
}

// NewManager создает реестр автоматов подключения.
func NewManager(client bank.Client, items ItemStore, syncer Syncer, hub *notifications.Hub, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		machines: make(map[uuid.UUID]*Machine),
		client:   client,
		items:    items,
		syncer:   syncer,
		hub:      hub,
		logger:   logger,
	}
}

// Connect начинает подключение нового банка для пользователя.
func (mgr *Manager) Connect(ctx context.Context, userID uuid.UUID) (bank.LinkToken, error) {
	return mgr.machine(userID).Connect(ctx)
}

// Reconnect начинает восстановление существующего item.
func (mgr *Manager) Reconnect(ctx context.Context, userID uuid.UUID, itemID string) (bank.LinkToken, error) {
	return mgr.machine(userID).Reconnect(ctx, itemID)
}

// CompleteConsent передает автомату исход consent-взаимодействия.
func (mgr *Manager) CompleteConsent(ctx context.Context, userID uuid.UUID, result ConsentResult) (Completion, error) {
	return mgr.machine(userID).CompleteConsent(ctx, result)
}

// Remove удаляет item пользователя.
func (mgr *Manager) Remove(ctx context.Context, userID uuid.UUID, itemID string) error {
	return mgr.machine(userID).Remove(ctx, itemID)
}

// RefreshStatuses подтягивает статусы items из агрегатора и записывает
// изменившиеся. Статусы приходят out-of-band: агрегатор сам переводит
// item в login_required или pending_disconnect.
func (mgr *Manager) RefreshStatuses(ctx context.Context, userID uuid.UUID) error {
	records, err := mgr.client.ListItems(ctx, userID.String())
	if err != nil {
		return err
	}

	for _, record := range records {
		if !record.Status.Valid() {
			mgr.logger.Warn("skipping unknown item status",
				slog.String("item_id", record.ItemID),
				slog.String("status", string(record.Status)))
			continue
		}

		item, err := mgr.items.Get(ctx, userID, record.ItemID)
		if err != nil {
			continue
		}
		if item.Status == record.Status {
			continue
		}

		if err := mgr.items.UpdateStatus(ctx, userID, record.ItemID, record.Status); err != nil {
			return err
		}
		mgr.hub.PublishLinkUpdated(userID, record.ItemID, string(record.Status))
	}

	return nil
}

// MachineState возвращает состояние конвейера пользователя.
func (mgr *Manager) MachineState(userID uuid.UUID) State {
	return mgr.machine(userID).State()
}

func (mgr *Manager) machine(userID uuid.UUID) *Machine {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	machine, ok := mgr.machines[userID]
	if !ok {
		machine = NewMachine(userID, mgr.client, mgr.items, mgr.syncer, mgr.hub, mgr.logger)
		mgr.machines[userID] = machine
	}

	return machine
}
