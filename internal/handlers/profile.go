package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/daily-budget/backend/internal/auth"
	"example.com/daily-budget/backend/internal/budget"
	"example.com/daily-budget/backend/internal/models"
	"example.com/daily-budget/backend/internal/notifications"
	"example.com/daily-budget/backend/internal/repository"
)

type ProfileHandler struct {
	Profiles *repository.ProfileRepository
	Notifier *notifications.Hub
}

// NewProfileHandler создает обработчик финансового профиля.
func NewProfileHandler(profiles *repository.ProfileRepository, notifier *notifications.Hub) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Notifier: notifier}
}

// Числовые поля принимаются как число или строка и приводятся на границе:
// мусор и отрицательные значения деградируют до 0, запрос не падает.
type FixedExpenseRequest struct {
	Label         string `json:"label" validate:"required,max=100"`
	MonthlyAmount any    `json:"monthly_amount"`
}

type ProfileRequest struct {
	IncomeMonthly      any                   `json:"income_monthly"`
	SavingsMonthly     any                   `json:"savings_monthly"`
	InvestmentsMonthly any                   `json:"investments_monthly"`
	FixedExpenses      []FixedExpenseRequest `json:"fixed_expenses" validate:"dive"`
}

type ProfileResponse struct {
	Profile  models.FinancialProfile `json:"profile"`
	Snapshot models.BudgetSnapshot   `json:"snapshot"`
}

// Get возвращает профиль пользователя и производный срез бюджета.
// Отсутствующий профиль отдается пустым с нулевым бюджетом, чтобы
// экран всегда было чем отрисовать.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.Profiles.GetByUser(c.Request().Context(), userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return serverError(c)
		}
		profile = models.FinancialProfile{UserID: userID, FixedExpenses: []models.FixedExpense{}}
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Profile:  profile,
		Snapshot: budget.Derive(profile, time.Now()),
	})
}

// Update полностью заменяет профиль пользователя.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expenses := make([]models.FixedExpense, 0, len(req.FixedExpenses))
	for _, expense := range req.FixedExpenses {
		label := strings.TrimSpace(expense.Label)
		if label == "" {
			return badRequest(c, "expense label is required")
		}
		expenses = append(expenses, models.FixedExpense{
			Label:         label,
			MonthlyAmount: budget.CoerceNonNegative(expense.MonthlyAmount),
		})
	}

	profile := models.FinancialProfile{
		IncomeMonthly:      budget.CoerceNonNegative(req.IncomeMonthly),
		SavingsMonthly:     budget.CoerceNonNegative(req.SavingsMonthly),
		InvestmentsMonthly: budget.CoerceNonNegative(req.InvestmentsMonthly),
		FixedExpenses:      expenses,
	}

	saved, err := h.Profiles.Replace(c.Request().Context(), userID, profile)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid profile")
		}
		return serverError(c)
	}

	snapshot := budget.Derive(saved, time.Now())
	publishBudgetUpdate(h.Notifier, userID, snapshot)

	return c.JSON(http.StatusOK, ProfileResponse{Profile: saved, Snapshot: snapshot})
}
