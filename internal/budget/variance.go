package budget

import "math"

type VarianceCategory string

const (
	VarianceOnTrack        VarianceCategory = "on_track"
	VarianceOverOptimistic VarianceCategory = "over_optimistic"
	VarianceMoreRoom       VarianceCategory = "more_room"

	onTrackThresholdPercent = 10.0
)

type Variance struct {
	PercentDiff float64          `json:"percent_diff"`
	Category    VarianceCategory `json:"category"`
}

// Classify сравнивает фактический дневной расход с целевым. Категории
// исчерпывающие и не пересекаются; ровно 10% отклонения еще считается
// on_track. При нулевой цели отклонение определяется как 0. Фактический
// расход может быть отрицательным — здесь он не ограничивается нулем.
func Classify(actualDaily, targetDaily float64) Variance {
	var percentDiff float64
	if targetDaily != 0 {
		percentDiff = math.Abs(actualDaily-targetDaily) / targetDaily * 100
	}

	category := VarianceMoreRoom
	switch {
	case percentDiff <= onTrackThresholdPercent:
		category = VarianceOnTrack
	case actualDaily < targetDaily:
		category = VarianceOverOptimistic
	}

	return Variance{PercentDiff: percentDiff, Category: category}
}
