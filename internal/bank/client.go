package bank

import (
	"context"
	"errors"
	"time"

	"example.com/daily-budget/backend/internal/models"
)

// ErrTransient помечает сбои, которые безопасно повторить целиком:
// таймауты и 5xx агрегатора.
var ErrTransient = errors.New("transient backend failure")

// LinkToken — короткоживущий токен для запуска consent-сессии.
// Запрашивается заново на каждый connect/reconnect и не переиспользуется.
type LinkToken struct {
	Token      string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// ItemRecord — результат обмена public-токена. Долгоживущий access-токен
// остается на стороне агрегатора и сюда не попадает.
type ItemRecord struct {
	ItemID          string `json:"item_id"`
	InstitutionName string `json:"institution_name"`
}

type ItemStatusRecord struct {
	ItemID          string            `json:"item_id"`
	InstitutionName string            `json:"institution_name"`
	Status          models.ItemStatus `json:"status"`
}

type Client interface {
	CreateLinkToken(ctx context.Context, userID string) (LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (ItemRecord, error)
	ListItems(ctx context.Context, userID string) ([]ItemStatusRecord, error)
	ListAccounts(ctx context.Context, itemID string) ([]models.Account, error)
	ListTransactions(ctx context.Context, itemID string, start, end time.Time) ([]models.Transaction, error)
	RemoveItem(ctx context.Context, itemID string) error
}

// IsTransient сообщает, можно ли повторить операцию после этой ошибки.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
