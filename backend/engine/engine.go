// Package engine пересчитывает производные метрики из снимка профиля.
// Все функции чистые: один и тот же снимок даёт один и тот же результат,
// профиль никогда не мутируется. Ничего из посчитанного не сохраняется —
// это защита от расхождения хранимых и пересчитанных агрегатов.
package engine

import (
	"math"
	"sort"
	"time"

	"planner/backend/models"
)

const dayKeyLayout = "2006-01-02"

// DayKey возвращает ключ истории для момента времени в заданной зоне.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// Level вычисляет уровень из XP. Порог фиксированный: 1000 XP на уровень.
func Level(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp / 1000
}

// TodayMinutes — минуты, накопленные за сегодняшний день.
func TodayMinutes(h models.History, now time.Time, loc *time.Location) float64 {
	return h[DayKey(now, loc)]
}

// GoalProgress — процент выполнения дневной цели, 0..100.
func GoalProgress(p *models.Profile, now time.Time, loc *time.Location) float64 {
	goalMins := p.DailyGoalHours * 60
	if goalMins <= 0 {
		return 0
	}
	pct := TodayMinutes(p.History, now, loc) / goalMins * 100
	return math.Min(pct, 100)
}

// DistributionBucket — корзина сводки времени по предметам.
type DistributionBucket struct {
	Name    string `json:"name"`
	Seconds int    `json:"seconds"`
}

// SubjectDistribution группирует суммарное время в корзины: Physics,
// Maths и/или Biology и единая Chemistry из трёх разделов химии.
// При нулевом общем времени возвращается одна корзина-заглушка, чтобы
// потребитель диаграммы никогда не получал пустой набор.
func SubjectDistribution(p *models.Profile) []DistributionBucket {
	seconds := func(name models.SubjectName) int {
		if s, ok := p.Subjects[name]; ok && s != nil {
			return s.TimeSpentSeconds
		}
		return 0
	}

	chem := 0
	for _, name := range models.ChemistrySubjects {
		chem += seconds(name)
	}

	var buckets []DistributionBucket
	if _, ok := p.Subjects[models.SubjectPhysics]; ok {
		buckets = append(buckets, DistributionBucket{Name: string(models.SubjectPhysics), Seconds: seconds(models.SubjectPhysics)})
	}
	if _, ok := p.Subjects[models.SubjectMaths]; ok {
		buckets = append(buckets, DistributionBucket{Name: string(models.SubjectMaths), Seconds: seconds(models.SubjectMaths)})
	}
	if _, ok := p.Subjects[models.SubjectBiology]; ok {
		buckets = append(buckets, DistributionBucket{Name: string(models.SubjectBiology), Seconds: seconds(models.SubjectBiology)})
	}
	buckets = append(buckets, DistributionBucket{Name: "Chemistry", Seconds: chem})

	total := 0
	for _, b := range buckets {
		total += b.Seconds
	}
	if total == 0 {
		return []DistributionBucket{{Name: "No Data", Seconds: 1}}
	}
	return buckets
}

// Countdown — счётчик дней до экзамена.
type Countdown struct {
	Exam     models.ExamName `json:"exam"`
	Label    string          `json:"label"`
	Date     string          `json:"date"`
	DaysLeft int             `json:"days_left"`
}

// Countdowns возвращает счётчики для выбранных экзаменов. Прошедшие
// экзамены исключаются, ближайший идёт первым.
func Countdowns(selected []models.ExamName, now time.Time, loc *time.Location) []Countdown {
	today := utcDay(now.In(loc))
	var out []Countdown
	for _, name := range selected {
		info, ok := models.ExamCatalog[name]
		if !ok {
			continue
		}
		// Дата каталога — календарный день, не момент: сутки считаются
		// между полуночами UTC, иначе западная зона или переход на
		// летнее время съедают до двух дней.
		examDay := utcDay(info.Date.UTC())
		days := int(examDay.Sub(today).Hours() / 24)
		if days < 0 {
			continue
		}
		out = append(out, Countdown{
			Exam:     name,
			Label:    info.Label,
			Date:     info.Date.Format(dayKeyLayout),
			DaysLeft: days,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out
}

// ChapterProgress — сводка готовности одной главы.
type ChapterProgress struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Grade    string `json:"grade"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
	Complete bool   `json:"complete"`
}

// SyllabusCompletion считает готовность глав предмета. Полная глава
// получает флаг Complete для отдельного визуального состояния, других
// побочных эффектов (бонусного XP и т.п.) у 100% нет.
func SyllabusCompletion(p *models.Profile, subject models.SubjectName) []ChapterProgress {
	sub, ok := p.Subjects[subject]
	if !ok || sub == nil {
		return nil
	}
	out := make([]ChapterProgress, 0, len(sub.Chapters))
	for _, ch := range sub.Chapters {
		done := ch.DoneUnits()
		out = append(out, ChapterProgress{
			ID:       ch.ID,
			Name:     ch.Name,
			Grade:    ch.Grade,
			Done:     done,
			Total:    ch.TotalUnits,
			Percent:  ch.CompletionPercent(),
			Complete: ch.TotalUnits > 0 && done == ch.TotalUnits,
		})
	}
	return out
}

// MockSeries фильтрует пробники по типу экзамена и сортирует по дате
// для хронологического графика. Пустой фильтр возвращает все.
func MockSeries(p *models.Profile, examType models.ExamName) []models.MockTest {
	var out []models.MockTest
	for _, t := range p.MockTests {
		if examType != "" && t.ExamType != examType {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, erri := time.Parse(dayKeyLayout, out[i].Date)
		dj, errj := time.Parse(dayKeyLayout, out[j].Date)
		if erri != nil || errj != nil {
			return out[i].Date < out[j].Date
		}
		return di.Before(dj)
	})
	return out
}

// civilDate усекает момент времени до полуночи календарного дня в зоне.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// utcDay проецирует календарный день момента на полночь UTC. Разность
// двух таких значений — точное кратное суток в любой зоне.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
