package budget

import (
	"errors"
	"math"
	"testing"

	"example.com/daily-budget/backend/internal/models"
)

// TestForecastZeroElapsedDays проверяет, что при нуле прошедших дней
// новое среднее равно гипотетической трате.
func TestForecastZeroElapsedDays(t *testing.T) {
	for _, avg := range []float64{0, 10, 55.5, 100000} {
		result, err := Forecast(avg, 0, 42)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.NewDailyAverage != 42 {
			t.Fatalf("avg=%v: expected new average 42, got %v", avg, result.NewDailyAverage)
		}
	}
}

// TestForecastAverage проверяет формулу взвешенного среднего.
func TestForecastAverage(t *testing.T) {
	result, err := Forecast(50, 9, 150)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := (50.0*9 + 150) / 10
	if math.Abs(result.NewDailyAverage-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, result.NewDailyAverage)
	}
	if result.Direction != models.DirectionHigher {
		t.Fatalf("expected higher, got %s", result.Direction)
	}
	if math.Abs(result.Delta-(want-50)) > 1e-9 {
		t.Fatalf("expected delta %v, got %v", want-50, result.Delta)
	}
}

// TestForecastDirectionLowerOnEqual проверяет соглашение: равенство
// средних отображается как lower.
func TestForecastDirectionLowerOnEqual(t *testing.T) {
	result, err := Forecast(50, 4, 50)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.NewDailyAverage != 50 {
		t.Fatalf("expected 50, got %v", result.NewDailyAverage)
	}
	if result.Direction != models.DirectionLower {
		t.Fatalf("expected lower on equality, got %s", result.Direction)
	}

	result, err = Forecast(50, 4, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Direction != models.DirectionLower {
		t.Fatalf("expected lower, got %s", result.Direction)
	}
	if result.Delta >= 0 {
		t.Fatalf("expected negative delta, got %v", result.Delta)
	}
}

// TestForecastRejectsInvalidInput проверяет отказ на отрицательных и
// нечисловых значениях.
func TestForecastRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		spend   float64
		elapsed int
	}{
		{"negative spend", -1, 5},
		{"nan spend", math.NaN(), 5},
		{"inf spend", math.Inf(1), 5},
		{"negative elapsed", 10, -1},
	}

	for _, tc := range cases {
		if _, err := Forecast(50, tc.elapsed, tc.spend); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}
