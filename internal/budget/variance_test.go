package budget

import (
	"math"
	"testing"
)

// TestClassifyCategories проверяет все три категории и границу на 10%.
func TestClassifyCategories(t *testing.T) {
	cases := []struct {
		name   string
		actual float64
		target float64
		want   VarianceCategory
	}{
		{"exact match", 50, 50, VarianceOnTrack},
		{"boundary 10 percent inclusive", 55, 50, VarianceOnTrack},
		{"just under target within 10", 46, 50, VarianceOnTrack},
		{"well below target", 30, 50, VarianceOverOptimistic},
		{"well above target", 70, 50, VarianceMoreRoom},
		{"zero target", 123, 0, VarianceOnTrack},
		{"zero target zero actual", 0, 0, VarianceOnTrack},
		{"negative actual below target", -10, 50, VarianceOverOptimistic},
	}

	for _, tc := range cases {
		got := Classify(tc.actual, tc.target)
		if got.Category != tc.want {
			t.Fatalf("%s: expected %s, got %s (diff %v)", tc.name, tc.want, got.Category, got.PercentDiff)
		}
	}
}

// TestClassifyPercentDiff проверяет формулу процента отклонения.
func TestClassifyPercentDiff(t *testing.T) {
	got := Classify(45, 50)
	if math.Abs(got.PercentDiff-10) > 1e-9 {
		t.Fatalf("expected 10, got %v", got.PercentDiff)
	}

	got = Classify(100, 50)
	if math.Abs(got.PercentDiff-100) > 1e-9 {
		t.Fatalf("expected 100, got %v", got.PercentDiff)
	}

	got = Classify(42, 0)
	if got.PercentDiff != 0 {
		t.Fatalf("expected 0 for zero target, got %v", got.PercentDiff)
	}
}

// TestClassifyPartition проверяет, что любая пара значений попадает ровно
// в одну категорию.
func TestClassifyPartition(t *testing.T) {
	actuals := []float64{-100, -1, 0, 0.5, 10, 44.9, 45, 55, 55.1, 1000}
	targets := []float64{0, 0.5, 10, 50, 1000}

	for _, actual := range actuals {
		for _, target := range targets {
			got := Classify(actual, target)
			switch got.Category {
			case VarianceOnTrack, VarianceOverOptimistic, VarianceMoreRoom:
			default:
				t.Fatalf("actual=%v target=%v: unexpected category %q", actual, target, got.Category)
			}
		}
	}
}
