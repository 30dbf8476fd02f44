package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/models"
	"example.com/daily-budget/backend/internal/notifications"
)

type State string

const (
	StateIdle           State = "idle"
	StateTokenRequested State = "token_requested"
	StateTokenReceived  State = "token_received"
	StateUserConsenting State = "user_consenting"
	StateExchanging     State = "exchanging"
	StateError          State = "error"
)

type ConsentOutcome string

const (
	ConsentSuccess ConsentOutcome = "success"
	ConsentExit    ConsentOutcome = "exit"
)

// ConsentResult — исход consent-взаимодействия: success с одноразовым
// public-токеном либо exit, опционально с кодом ошибки провайдера.
type ConsentResult struct {
	Outcome     ConsentOutcome
	PublicToken string
	ErrorCode   string
}

// Completion — результат завершения handshake. При исходе exit Linked
// равен false, а ExitErrorCode несет код ошибки, если он был. SyncError
// заполняется, когда item уже сохранен, но синхронизация не удалась.
type Completion struct {
	Linked        bool
	Item          models.BankLinkItem
	ExitErrorCode string
	SyncError     error
}

var (
	// ErrHandshakeInFlight возвращается на повторный connect/reconnect,
	// пока конвейер не вернулся в idle или error.
	ErrHandshakeInFlight = errors.New("link handshake already in flight")
	// ErrInvalidTransition — нарушение контракта автомата, ошибка
	// программиста, а не пользователя.
	ErrInvalidTransition = errors.New("invalid link state transition")
	// ErrExchangeFailed помечает неудачный обмен public-токена. Обмен
	// не повторяется автоматически: токен мог быть уже использован.
	ErrExchangeFailed = errors.New("public token exchange failed")
	// ErrNotReconnectable — статус item не допускает reconnect.
	ErrNotReconnectable = errors.New("item status does not allow reconnect")
)

// ItemStore — персистентное хранилище банковских подключений.
type ItemStore interface {
	Upsert(ctx context.Context, item models.BankLinkItem) (models.BankLinkItem, error)
	Get(ctx context.Context, userID uuid.UUID, itemID string) (models.BankLinkItem, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, itemID string, status models.ItemStatus) error
	Delete(ctx context.Context, userID uuid.UUID, itemID string) error
}

// Syncer запускает полную синхронизацию счетов и операций item.
type Syncer interface {
	SyncItem(ctx context.Context, userID uuid.UUID, itemID string) error
}

// Machine — автомат жизненного цикла подключения одного пользователя.
// Handshake сериализован: одновременно выполняется не больше одного
// connect/reconnect, потому что consent-взаимодействие — единственная
// UI-поверхность.
type Machine struct {
	mu              sync.Mutex
	state           State
	reconnectItemID string

	userID uuid.UUID
	client bank.Client
	items  ItemStore
	syncer Syncer
	hub    *notifications.Hub
	logger *slog.Logger
}

// NewMachine создает автомат подключения для пользователя.
func NewMachine(userID uuid.UUID, client bank.Client, items ItemStore, syncer Syncer, hub *notifications.Hub, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Machine{
		state:  StateIdle,
		userID: userID,
		client: client,
		items:  items,
		syncer: syncer,
		hub:    hub,
		logger: logger,
	}
}

// State возвращает текущее состояние конвейера.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect начинает подключение нового банка: запрашивает свежий
// link-токен и оставляет конвейер ждать исхода consent-взаимодействия.
// Повторный вызов до возврата в idle или error отклоняется, поэтому
// сетевой запрос токена выполняется ровно один раз.
func (m *Machine) Connect(ctx context.Context) (bank.LinkToken, error) {
	if err := m.begin(""); err != nil {
		return bank.LinkToken{}, err
	}

	token, err := m.client.CreateLinkToken(ctx, m.userID.String())
	if err != nil {
		m.setState(StateIdle)
		return bank.LinkToken{}, fmt.Errorf("create link token: %w", err)
	}

	m.setState(StateTokenReceived)
	m.setState(StateUserConsenting)
	return token, nil
}

// Reconnect начинает восстановление существующего item. Допустимо
// только из статусов login_required, pending_expiration и
// new_accounts_available; pending_disconnect и error лечатся удалением.
func (m *Machine) Reconnect(ctx context.Context, itemID string) (bank.LinkToken, error) {
	item, err := m.items.Get(ctx, m.userID, itemID)
	if err != nil {
		return bank.LinkToken{}, err
	}

	if !item.Status.Reconnectable() {
		return bank.LinkToken{}, fmt.Errorf("%w: %s", ErrNotReconnectable, item.Status)
	}

	if err := m.begin(itemID); err != nil {
		return bank.LinkToken{}, err
	}

	token, err := m.client.CreateLinkToken(ctx, m.userID.String())
	if err != nil {
		m.setState(StateIdle)
		return bank.LinkToken{}, fmt.Errorf("create link token: %w", err)
	}

	m.setState(StateTokenReceived)
	m.setState(StateUserConsenting)
	return token, nil
}

// CompleteConsent обрабатывает исход consent-взаимодействия для connect
// и reconnect. Exit возвращает конвейер в idle без изменения состояния
// items; success ведет через обмен токена к синхронизации. Синхронизация
// стартует строго после записи результата обмена.
func (m *Machine) CompleteConsent(ctx context.Context, result ConsentResult) (Completion, error) {
	m.mu.Lock()
	if m.state != StateUserConsenting {
		state := m.state
		m.mu.Unlock()
		return Completion{}, fmt.Errorf("%w: consent completion in state %s", ErrInvalidTransition, state)
	}

	reconnectItemID := m.reconnectItemID

	if result.Outcome != ConsentSuccess {
		// Уход пользователя из consent-потока не ошибка: частичного
		// состояния нет, можно сразу пробовать снова.
		m.state = StateIdle
		m.reconnectItemID = ""
		m.mu.Unlock()
		return Completion{ExitErrorCode: result.ErrorCode}, nil
	}

	m.state = StateExchanging
	m.mu.Unlock()

	if reconnectItemID != "" {
		return m.completeReconnect(ctx, reconnectItemID, result)
	}
	return m.completeConnect(ctx, result)
}

// Remove удаляет item: сначала на стороне агрегатора, затем локально
// вместе со счетами и операциями. При сбое состояние не меняется и
// операция не повторяется автоматически.
func (m *Machine) Remove(ctx context.Context, itemID string) error {
	if _, err := m.items.Get(ctx, m.userID, itemID); err != nil {
		return err
	}

	if err := m.client.RemoveItem(ctx, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	if err := m.items.Delete(ctx, m.userID, itemID); err != nil {
		return err
	}

	m.hub.PublishLinkUpdated(m.userID, itemID, "removed")
	return nil
}

func (m *Machine) completeConnect(ctx context.Context, result ConsentResult) (Completion, error) {
	record, err := m.client.ExchangePublicToken(ctx, result.PublicToken)
	if err != nil {
		m.setState(StateError)
		return Completion{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	item, err := m.items.Upsert(ctx, models.BankLinkItem{
		ItemID:          record.ItemID,
		UserID:          m.userID,
		InstitutionName: record.InstitutionName,
		Status:          models.ItemStatusHealthy,
	})
	if err != nil {
		m.setState(StateError)
		return Completion{}, fmt.Errorf("persist item: %w", err)
	}

	m.setState(StateIdle)
	m.hub.PublishLinkUpdated(m.userID, item.ItemID, string(item.Status))

	completion := Completion{Linked: true, Item: item}
	if err := m.syncer.SyncItem(ctx, m.userID, item.ItemID); err != nil {
		m.logger.Warn("initial sync failed",
			slog.String("item_id", item.ItemID),
			slog.String("error", err.Error()))
		completion.SyncError = err
	}

	return completion, nil
}

func (m *Machine) completeReconnect(ctx context.Context, itemID string, result ConsentResult) (Completion, error) {
	if _, err := m.client.ExchangePublicToken(ctx, result.PublicToken); err != nil {
		m.setState(StateError)
		return Completion{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	if err := m.items.UpdateStatus(ctx, m.userID, itemID, models.ItemStatusHealthy); err != nil {
		m.setState(StateError)
		return Completion{}, fmt.Errorf("persist item status: %w", err)
	}

	item, err := m.items.Get(ctx, m.userID, itemID)
	if err != nil {
		m.setState(StateError)
		return Completion{}, err
	}

	m.setState(StateIdle)
	m.hub.PublishLinkUpdated(m.userID, itemID, string(models.ItemStatusHealthy))

	completion := Completion{Linked: true, Item: item}
	if err := m.syncer.SyncItem(ctx, m.userID, itemID); err != nil {
		m.logger.Warn("reconnect sync failed",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		completion.SyncError = err
	}

	return completion, nil
}

// begin захватывает конвейер под новый handshake. Разрешено из idle и
// из error: залипшая ошибка обмена не блокирует повторный connect.
func (m *Machine) begin(reconnectItemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle && m.state != StateError {
		return ErrHandshakeInFlight
	}

	m.state = StateTokenRequested
	m.reconnectItemID = reconnectItemID
	return nil
}

func (m *Machine) setState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	if state == StateIdle || state == StateError {
		m.reconnectItemID = ""
	}
}
