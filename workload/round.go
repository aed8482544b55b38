package workload

import "github.com/shopspring/decimal"

// Precision used when reporting payroll lines.
const (
	LessonPlaces  int32 = 2
	PercentPlaces int32 = 3
)

// Round rounds half away from zero at the given number of places.
// The value goes through its shortest decimal representation, so 2.005
// rounds to 2.01 even though the binary float is slightly below it.
func Round(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}

func RoundLessons(lessons float64) float64 { return Round(lessons, LessonPlaces) }
func RoundPercent(percent float64) float64 { return Round(percent, PercentPlaces) }
