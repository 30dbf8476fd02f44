package budget

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"example.com/daily-budget/backend/internal/models"
)

// Derive вычисляет срез бюджета из профиля на заданную дату. Чистая
// функция: без побочных эффектов, одинаковый вход дает одинаковый выход.
// Испорченные числовые поля деградируют до нуля, а не до ошибки, чтобы
// вывод всегда оставался отображаемым.
func Derive(profile models.FinancialProfile, asOf time.Time) models.BudgetSnapshot {
	var totalFixed float64
	for _, expense := range profile.FixedExpenses {
		totalFixed += sanitize(expense.MonthlyAmount)
	}

	income := sanitize(profile.IncomeMonthly)
	savings := sanitize(profile.SavingsMonthly)
	investments := sanitize(profile.InvestmentsMonthly)

	discretionary := income - totalFixed - savings - investments
	if discretionary < 0 {
		// Отрицательный остаток показывается как нулевой бюджет.
		discretionary = 0
	}

	daysTotal := daysInMonth(asOf)
	daily := discretionary / float64(daysTotal)

	return models.BudgetSnapshot{
		DiscretionaryMonthly: discretionary,
		DailyBudget:          daily,
		WeeklyBudget:         daily * 7,
		MonthlyBudget:        discretionary,
		PeriodDaysElapsed:    asOf.Day(),
		PeriodDaysTotal:      daysTotal,
	}
}

// CoerceNonNegative приводит произвольное JSON-значение к неотрицательному
// числу. Строки парсятся, все нечисловое и отрицательное дает 0. Единая
// точка приведения на границе профиль/движок.
func CoerceNonNegative(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(v)
	case float32:
		return sanitize(float64(v))
	case int:
		return sanitize(float64(v))
	case int64:
		return sanitize(float64(v))
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		return sanitize(parsed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return sanitize(parsed)
	default:
		return 0
	}
}

func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

func daysInMonth(asOf time.Time) int {
	firstOfNext := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
