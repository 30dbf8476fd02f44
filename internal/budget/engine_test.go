package budget

import (
	"math"
	"reflect"
	"testing"
	"time"

	"example.com/daily-budget/backend/internal/models"
)

func sampleProfile() models.FinancialProfile {
	return models.FinancialProfile{
		IncomeMonthly:      5000,
		SavingsMonthly:     500,
		InvestmentsMonthly: 1000,
		FixedExpenses: []models.FixedExpense{
			{Label: "Rent", MonthlyAmount: 1200},
			{Label: "Utilities", MonthlyAmount: 200},
			{Label: "Internet", MonthlyAmount: 80},
			{Label: "Netflix", MonthlyAmount: 15},
			{Label: "Gym", MonthlyAmount: 50},
		},
	}
}

// TestDeriveExactArithmetic проверяет точный расчет по эталонному профилю.
func TestDeriveExactArithmetic(t *testing.T) {
	asOf := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	snapshot := Derive(sampleProfile(), asOf)

	// 5000 - 1545 - 500 - 1000
	wantDiscretionary := 1955.0
	if snapshot.DiscretionaryMonthly != wantDiscretionary {
		t.Fatalf("expected discretionary %v, got %v", wantDiscretionary, snapshot.DiscretionaryMonthly)
	}
	if snapshot.MonthlyBudget != wantDiscretionary {
		t.Fatalf("expected monthly budget %v, got %v", wantDiscretionary, snapshot.MonthlyBudget)
	}
	if snapshot.PeriodDaysTotal != 31 {
		t.Fatalf("expected 31 days in January, got %d", snapshot.PeriodDaysTotal)
	}
	if snapshot.PeriodDaysElapsed != 15 {
		t.Fatalf("expected 15 elapsed days, got %d", snapshot.PeriodDaysElapsed)
	}

	wantDaily := wantDiscretionary / 31
	if math.Abs(snapshot.DailyBudget-wantDaily) > 1e-9 {
		t.Fatalf("expected daily %v, got %v", wantDaily, snapshot.DailyBudget)
	}
	if math.Abs(snapshot.WeeklyBudget-wantDaily*7) > 1e-9 {
		t.Fatalf("expected weekly %v, got %v", wantDaily*7, snapshot.WeeklyBudget)
	}
}

// TestDeriveDailyTimesDaysEqualsDiscretionary проверяет инвариант
// dailyBudget * daysInPeriod == discretionary в пределах погрешности float.
func TestDeriveDailyTimesDaysEqualsDiscretionary(t *testing.T) {
	profiles := []models.FinancialProfile{
		sampleProfile(),
		{IncomeMonthly: 3210.55, SavingsMonthly: 100, InvestmentsMonthly: 0,
			FixedExpenses: []models.FixedExpense{{Label: "Rent", MonthlyAmount: 900.45}}},
		{IncomeMonthly: 100, FixedExpenses: nil},
	}

	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	for _, profile := range profiles {
		snapshot := Derive(profile, asOf)
		product := snapshot.DailyBudget * float64(snapshot.PeriodDaysTotal)
		if math.Abs(product-snapshot.DiscretionaryMonthly) > 1e-9 {
			t.Fatalf("expected %v, got %v", snapshot.DiscretionaryMonthly, product)
		}
	}
}

// TestDeriveClampsNegativeDiscretionary проверяет, что отрицательный
// остаток показывается как нулевой бюджет.
func TestDeriveClampsNegativeDiscretionary(t *testing.T) {
	profile := models.FinancialProfile{
		IncomeMonthly:  1000,
		SavingsMonthly: 500,
		FixedExpenses:  []models.FixedExpense{{Label: "Rent", MonthlyAmount: 2000}},
	}

	snapshot := Derive(profile, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	if snapshot.DiscretionaryMonthly != 0 {
		t.Fatalf("expected 0 discretionary, got %v", snapshot.DiscretionaryMonthly)
	}
	if snapshot.DailyBudget != 0 || snapshot.WeeklyBudget != 0 || snapshot.MonthlyBudget != 0 {
		t.Fatalf("expected zero budget figures, got %+v", snapshot)
	}
}

// TestDeriveEmptyFixedExpenses проверяет пустой список фиксированных трат.
func TestDeriveEmptyFixedExpenses(t *testing.T) {
	profile := models.FinancialProfile{IncomeMonthly: 3000}

	snapshot := Derive(profile, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	if snapshot.DiscretionaryMonthly != 3000 {
		t.Fatalf("expected 3000, got %v", snapshot.DiscretionaryMonthly)
	}
}

// TestDeriveMalformedNumbersDegradeToZero проверяет, что NaN и Inf в
// профиле не роняют расчет.
func TestDeriveMalformedNumbersDegradeToZero(t *testing.T) {
	profile := models.FinancialProfile{
		IncomeMonthly:      math.NaN(),
		SavingsMonthly:     math.Inf(1),
		InvestmentsMonthly: -50,
		FixedExpenses:      []models.FixedExpense{{Label: "Rent", MonthlyAmount: math.Inf(-1)}},
	}

	snapshot := Derive(profile, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	if snapshot.DiscretionaryMonthly != 0 {
		t.Fatalf("expected 0, got %v", snapshot.DiscretionaryMonthly)
	}
}

// TestDeriveIdempotent проверяет, что повторный вызов с тем же входом
// дает идентичный результат.
func TestDeriveIdempotent(t *testing.T) {
	profile := sampleProfile()
	asOf := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)

	first := Derive(profile, asOf)
	second := Derive(profile, asOf)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical snapshots, got %+v and %+v", first, second)
	}
}

// TestDeriveLeapFebruary проверяет количество дней в високосном феврале.
func TestDeriveLeapFebruary(t *testing.T) {
	snapshot := Derive(sampleProfile(), time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC))
	if snapshot.PeriodDaysTotal != 29 {
		t.Fatalf("expected 29 days, got %d", snapshot.PeriodDaysTotal)
	}
}

// TestCoerceNonNegative проверяет приведение разнотипных значений к числу.
func TestCoerceNonNegative(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"string number", "1200.50", 1200.50},
		{"string with spaces", "  80 ", 80},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"negative", -15.0, 0},
		{"negative string", "-15", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
	}

	for _, tc := range cases {
		got := CoerceNonNegative(tc.value)
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
