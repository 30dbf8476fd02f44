package models

import (
	"time"

	"github.com/google/uuid"
)

type ItemStatus string

type Direction string

const (
	ItemStatusHealthy              ItemStatus = "healthy"
	ItemStatusLoginRequired        ItemStatus = "login_required"
	ItemStatusPendingExpiration    ItemStatus = "pending_expiration"
	ItemStatusPendingDisconnect    ItemStatus = "pending_disconnect"
	ItemStatusNewAccountsAvailable ItemStatus = "new_accounts_available"
	ItemStatusError                ItemStatus = "error"

	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// Reconnectable сообщает, можно ли восстановить подключение в этом статусе.
// pending_disconnect и error ремонтируются только удалением item.
func (s ItemStatus) Reconnectable() bool {
	switch s {
	case ItemStatusLoginRequired, ItemStatusPendingExpiration, ItemStatusNewAccountsAvailable:
		return true
	default:
		return false
	}
}

// Valid проверяет, что статус входит в множество известных.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusHealthy, ItemStatusLoginRequired, ItemStatusPendingExpiration,
		ItemStatusPendingDisconnect, ItemStatusNewAccountsAvailable, ItemStatusError:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FixedExpense struct {
	Label         string  `json:"label"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// FinancialProfile — финансовый профиль пользователя. Обновляется только
// целиком: частичных записей не бывает.
type FinancialProfile struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"user_id"`
	IncomeMonthly      float64        `json:"income_monthly"`
	SavingsMonthly     float64        `json:"savings_monthly"`
	InvestmentsMonthly float64        `json:"investments_monthly"`
	FixedExpenses      []FixedExpense `json:"fixed_expenses"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// BudgetSnapshot — производное представление бюджета. Никогда не
// персистится и пересчитывается при каждом чтении профиля.
type BudgetSnapshot struct {
	DiscretionaryMonthly float64 `json:"discretionary_monthly"`
	DailyBudget          float64 `json:"daily_budget"`
	WeeklyBudget         float64 `json:"weekly_budget"`
	MonthlyBudget        float64 `json:"monthly_budget"`
	PeriodDaysElapsed    int     `json:"period_days_elapsed"`
	PeriodDaysTotal      int     `json:"period_days_total"`
}

// ForecastResult — проекция "что если потратить X сегодня". Равенство
// нового и текущего среднего отображается как направление lower.
type ForecastResult struct {
	HypotheticalSpendToday float64   `json:"hypothetical_spend_today"`
	NewDailyAverage        float64   `json:"new_daily_average"`
	Delta                  float64   `json:"delta"`
	Direction              Direction `json:"direction"`
}

// BankLinkItem — подключение к банку через агрегатор. Один item может
// покрывать несколько счетов одного учреждения.
type BankLinkItem struct {
	ItemID          string     `json:"item_id"`
	UserID          uuid.UUID  `json:"user_id"`
	InstitutionName string     `json:"institution_name"`
	Status          ItemStatus `json:"status"`
	Accounts        []Account  `json:"accounts"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Account struct {
	AccountID      string  `json:"account_id"`
	Name           string  `json:"name"`
	Mask           string  `json:"mask"`
	CurrentBalance float64 `json:"current_balance"`
}

// Transaction — синхронизированная банковская операция. Отрицательная
// сумма означает расход. После синхронизации меняется только флаг pending.
type Transaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Category  string    `json:"category"`
	Pending   bool      `json:"pending"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
