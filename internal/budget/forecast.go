package budget

import (
	"errors"
	"math"

	"example.com/daily-budget/backend/internal/models"
)

var ErrInvalidInput = errors.New("invalid input")

// Forecast считает новое среднее дневных трат при гипотетической покупке
// сегодня: (currentAverage*elapsedDays + spend) / (elapsedDays + 1).
// Делитель всегда >= 1, поэтому elapsedDays == 0 безопасен и дает
// newAverage == spend. Без I/O: вызывается синхронно на каждый пересчет.
func Forecast(currentAverage float64, elapsedDays int, hypotheticalSpend float64) (models.ForecastResult, error) {
	if hypotheticalSpend < 0 || math.IsNaN(hypotheticalSpend) || math.IsInf(hypotheticalSpend, 0) {
		return models.ForecastResult{}, ErrInvalidInput
	}
	if elapsedDays < 0 {
		return models.ForecastResult{}, ErrInvalidInput
	}

	newAverage := (currentAverage*float64(elapsedDays) + hypotheticalSpend) / float64(elapsedDays+1)

	direction := models.DirectionLower
	if newAverage > currentAverage {
		direction = models.DirectionHigher
	}

	return models.ForecastResult{
		HypotheticalSpendToday: hypotheticalSpend,
		NewDailyAverage:        newAverage,
		Delta:                  newAverage - currentAverage,
		Direction:              direction,
	}, nil
}
