package engine

import (
	"math"
	"time"

	"planner/backend/models"
)

// WeekPoint — одна точка недельного графика.
type WeekPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"` // "Sun".."Sat"
	Hours float64 `json:"hours"`
}

// WeeklySeries строит ровно 7 точек текущей недели, начиная с воскресенья.
// Дни без записей дают 0, а не пропуск: график всегда получает неделю
// фиксированной ширины. Часы округляются до одного знака.
func WeeklySeries(h models.History, now time.Time, loc *time.Location) []WeekPoint {
	today := civilDate(now, loc)
	sunday := today.AddDate(0, 0, -int(today.Weekday()))

	points := make([]WeekPoint, 7)
	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		mins := h[day.Format(dayKeyLayout)]
		points[i] = WeekPoint{
			Date:  day.Format(dayKeyLayout),
			Label: day.Format("Mon"),
			Hours: math.Round(mins/60*10) / 10,
		}
	}
	return points
}

// Intensity — уровень насыщенности дня в тепловой карте.
type Intensity string

const (
	IntensityZero     Intensity = "zero"
	IntensityLow      Intensity = "low"       // до часа
	IntensityMedium   Intensity = "medium"    // до трёх часов
	IntensityHigh     Intensity = "high"      // до шести часов
	IntensityVeryHigh Intensity = "very_high" // больше шести часов
)

// classify относит минуты дня к уровню. Пороги фиксированные.
func classify(mins float64) Intensity {
	switch {
	case mins <= 0:
		return IntensityZero
	case mins <= 60:
		return IntensityLow
	case mins <= 180:
		return IntensityMedium
	case mins <= 360:
		return IntensityHigh
	default:
		return IntensityVeryHigh
	}
}

// HeatmapCell — одна ячейка тепловой карты. Blank-ячейки выравнивают
// первое число месяца на его день недели.
type HeatmapCell struct {
	Date    string    `json:"date,omitempty"`
	Minutes float64   `json:"minutes"`
	Tier    Intensity `json:"tier"`
	Blank   bool      `json:"blank,omitempty"`
}

// MonthHeatmap — ячейки одного месяца.
type MonthHeatmap struct {
	Month string        `json:"month"` // "2006-01"
	Cells []HeatmapCell `json:"cells"`
}

// HeatmapYear строит тепловую карту на весь календарный год: по ячейке
// на каждый день плюс ведущие пустые ячейки в начале каждого месяца.
func HeatmapYear(h models.History, year int, loc *time.Location) []MonthHeatmap {
	months := make([]MonthHeatmap, 0, 12)
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
		cells := make([]HeatmapCell, 0, 37)
		for i := 0; i < int(first.Weekday()); i++ {
			cells = append(cells, HeatmapCell{Blank: true, Tier: IntensityZero})
		}
		for day := first; day.Month() == m; day = day.AddDate(0, 0, 1) {
			mins := h[day.Format(dayKeyLayout)]
			cells = append(cells, HeatmapCell{
				Date:    day.Format(dayKeyLayout),
				Minutes: mins,
				Tier:    classify(mins),
			})
		}
		months = append(months, MonthHeatmap{
			Month: first.Format("2006-01"),
			Cells: cells,
		})
	}
	return months
}
