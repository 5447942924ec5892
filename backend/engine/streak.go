package engine

import (
	"time"

	"planner/backend/models"
)

// Streak — число подряд идущих календарных дней с ненулевыми минутами,
// заканчивающихся сегодня. Если за сегодня минут нет, серия равна нулю
// независимо от прошлых дней. Обход идёт строго по одному дню назад и
// останавливается на первом пропуске; дни не перескакиваются, верхнего
// предела у серии нет.
func Streak(h models.History, now time.Time, loc *time.Location) int {
	day := civilDate(now, loc)
	if h[day.Format(dayKeyLayout)] <= 0 {
		return 0
	}
	streak := 0
	for {
		mins, ok := h[day.Format(dayKeyLayout)]
		if !ok || mins <= 0 {
			return streak
		}
		streak++
		// AddDate по гражданской дате: дни перехода на летнее время
		// всё равно считаются одним днём.
		day = day.AddDate(0, 0, -1)
	}
}
