package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/daily-budget/backend/internal/auth"
	"example.com/daily-budget/backend/internal/budget"
	"example.com/daily-budget/backend/internal/models"
	"example.com/daily-budget/backend/internal/repository"
)

type BudgetHandler struct {
	Profiles     *repository.ProfileRepository
	Transactions *repository.TransactionRepository
}

// NewBudgetHandler создает обработчик расчетов бюджета.
func NewBudgetHandler(profiles *repository.ProfileRepository, transactions *repository.TransactionRepository) *BudgetHandler {
	return &BudgetHandler{Profiles: profiles, Transactions: transactions}
}

type ForecastRequest struct {
	Amount float64 `json:"amount"`
}

type VarianceResponse struct {
	ActualDaily float64                 `json:"actual_daily"`
	TargetDaily float64                 `json:"target_daily"`
	PercentDiff float64                 `json:"percent_diff"`
	Category    budget.VarianceCategory `json:"category"`
}

// Snapshot возвращает производный срез бюджета на сегодня.
func (h *BudgetHandler) Snapshot(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.loadProfile(c, userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, budget.Derive(profile, time.Now()))
}

// Forecast считает, как гипотетическая трата сегодня сдвинет среднее.
func (h *BudgetHandler) Forecast(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ForecastRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	now := time.Now()
	actualAverage, elapsedDays, err := h.actualDaily(c, userID, now)
	if err != nil {
		return serverError(c)
	}

	result, err := budget.Forecast(actualAverage, elapsedDays, req.Amount)
	if err != nil {
		if errors.Is(err, budget.ErrInvalidInput) {
			return badRequest(c, "amount must be a non-negative finite number")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

// Variance сравнивает фактический дневной расход с целевым. Без
// параметра target целью служит дневной бюджет из профиля.
func (h *BudgetHandler) Variance(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	now := time.Now()

	profile, err := h.loadProfile(c, userID)
	if err != nil {
		return serverError(c)
	}

	target := budget.Derive(profile, now).DailyBudget
	if raw := c.QueryParam("target"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "target must be a number")
		}
		target = parsed
	}

	actualDaily, _, err := h.actualDaily(c, userID, now)
	if err != nil {
		return serverError(c)
	}

	variance := budget.Classify(actualDaily, target)
	return c.JSON(http.StatusOK, VarianceResponse{
		ActualDaily: actualDaily,
		TargetDaily: target,
		PercentDiff: variance.PercentDiff,
		Category:    variance.Category,
	})
}

func (h *BudgetHandler) loadProfile(c echo.Context, userID uuid.UUID) (models.FinancialProfile, error) {
	profile, err := h.Profiles.GetByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.FinancialProfile{UserID: userID}, nil
		}
		return models.FinancialProfile{}, err
	}
	return profile, nil
}

// actualDaily возвращает средний дневной расход с начала месяца. Расход
// может быть нулевым, среднее не ограничивается снизу бюджетом.
func (h *BudgetHandler) actualDaily(c echo.Context, userID uuid.UUID, now time.Time) (float64, int, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	outflow, err := h.Transactions.OutflowTotal(c.Request().Context(), userID, monthStart, now)
	if err != nil {
		return 0, 0, err
	}

	elapsedDays := now.Day()
	return outflow / float64(elapsedDays), elapsedDays, nil
}
