package models

import "math"

// Profile — единый документ со всеми данными ученика.
// Хранится и синхронизируется только целиком, частичных записей нет.
type Profile struct {
	DailyGoalHours float64                  `json:"daily_goal_hours"`
	XP             int                      `json:"xp"`
	SelectedExams  []ExamName               `json:"selected_exams"`
	Subjects       map[SubjectName]*Subject `json:"subjects"`
	Tasks          []Task                   `json:"tasks"`
	MockTests      []MockTest               `json:"mock_tests"`
	History        History                  `json:"history"` // "2006-01-02" -> минуты за день
	Settings       Settings                 `json:"settings"`
}

// History — минуты занятий по календарным дням. Ключи создаются лениво,
// никогда не удаляются и только растут.
type History map[string]float64

type Subject struct {
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Chapters         []Chapter `json:"chapters"`
}

type Chapter struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Grade      string `json:"grade"` // "11" или "12"
	TotalUnits int    `json:"total_units"`
	UnitsDone  []bool `json:"units_done"`
}

type Task struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SubjectTag string `json:"subject_tag,omitempty"`
	Completed  bool   `json:"completed"`
}

type MockTest struct {
	ID       string   `json:"id"`
	ExamType ExamName `json:"exam_type"`
	Name     string   `json:"name"`
	Date     string   `json:"date"` // "2006-01-02"
	Physics  float64  `json:"p"`
	Chem     float64  `json:"c"`
	Maths    float64  `json:"m"`
	Total    float64  `json:"total"`
	MaxMarks float64  `json:"max_marks"`
}

// Settings — настройки отображения. Ядро их не интерпретирует,
// документ проносит их через себя без изменений.
type Settings struct {
	DarkMode bool           `json:"dark_mode"`
	Extra    map[string]any `json:"extra,omitempty"`
}

const DefaultDailyGoalHours = 10

// DefaultProfile создаёт профиль с начальными значениями для выбранных
// экзаменов. Вызывается при первом входе и при полном сбросе.
func DefaultProfile(exams []ExamName) *Profile {
	if len(exams) == 0 {
		exams = []ExamName{ExamJEEMain}
	}
	p := &Profile{
		DailyGoalHours: DefaultDailyGoalHours,
		SelectedExams:  append([]ExamName(nil), exams...),
		Subjects:       make(map[SubjectName]*Subject),
		Tasks:          []Task{},
		MockTests:      []MockTest{},
		History:        History{},
		Settings:       Settings{DarkMode: true},
	}
	for _, s := range SubjectsFor(exams) {
		p.Subjects[s] = &Subject{Chapters: []Chapter{}}
	}
	return p
}

// Valid проверяет инвариант главы: счётчик лекций положительный и
// длина массива отметок совпадает с ним.
func (c Chapter) Valid() bool {
	return c.TotalUnits > 0 && len(c.UnitsDone) == c.TotalUnits
}

// DoneUnits возвращает количество отмеченных лекций.
func (c Chapter) DoneUnits() int {
	done := 0
	for _, u := range c.UnitsDone {
		if u {
			done++
		}
	}
	return done
}

// CompletionPercent — процент готовности главы, 0..100.
func (c Chapter) CompletionPercent() int {
	if c.TotalUnits <= 0 {
		return 0
	}
	return int(math.Round(float64(c.DoneUnits()) / float64(c.TotalUnits) * 100))
}

// Valid проверяет инвариант пробника: сумма пересчитана и максимум положительный.
func (t MockTest) Valid() bool {
	return t.Total == t.Physics+t.Chem+t.Maths && t.MaxMarks > 0
}

// Normalize восстанавливает инварианты документа после загрузки.
// Сохранённым полям с дубликатами ответственности (total) не доверяем:
// всё производное пересчитывается, всё отрицательное обнуляется.
func (p *Profile) Normalize() {
	if p.DailyGoalHours <= 0 {
		p.DailyGoalHours = DefaultDailyGoalHours
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if len(p.SelectedExams) == 0 {
		p.SelectedExams = []ExamName{ExamJEEMain}
	}
	if p.Subjects == nil {
		p.Subjects = make(map[SubjectName]*Subject)
	}
	for _, name := range SubjectsFor(p.SelectedExams) {
		if p.Subjects[name] == nil {
			p.Subjects[name] = &Subject{Chapters: []Chapter{}}
		}
	}
	for _, sub := range p.Subjects {
		if sub.TimeSpentSeconds < 0 {
			sub.TimeSpentSeconds = 0
		}
		for i := range sub.Chapters {
			ch := &sub.Chapters[i]
			if ch.TotalUnits < 1 {
				ch.TotalUnits = 1
			}
			// Длина units_done всегда равна total_units: лишнее отрезаем,
			// недостающее добиваем false.
			if len(ch.UnitsDone) > ch.TotalUnits {
				ch.UnitsDone = ch.UnitsDone[:ch.TotalUnits]
			}
			for len(ch.UnitsDone) < ch.TotalUnits {
				ch.UnitsDone = append(ch.UnitsDone, false)
			}
		}
	}
	for i := range p.MockTests {
		t := &p.MockTests[i]
		if t.Physics < 0 {
			t.Physics = 0
		}
		if t.Chem < 0 {
			t.Chem = 0
		}
		if t.Maths < 0 {
			t.Maths = 0
		}
		t.Total = t.Physics + t.Chem + t.Maths
		if t.MaxMarks <= 0 {
			t.MaxMarks = ExamCatalog[t.ExamType].MaxMarks
			if t.MaxMarks <= 0 {
				t.MaxMarks = DefaultAdvancedMaxMarks
			}
		}
	}
	if p.History == nil {
		p.History = History{}
	}
	for day, mins := range p.History {
		if mins < 0 {
			p.History[day] = 0
		}
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	if p.MockTests == nil {
		p.MockTests = []MockTest{}
	}
}

// Clone делает глубокую копию профиля. Шлюз мутаций работает на копии,
// чтобы неудачная команда не оставила частичных изменений.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.SelectedExams = append([]ExamName(nil), p.SelectedExams...)
	cp.Subjects = make(map[SubjectName]*Subject, len(p.Subjects))
	for name, sub := range p.Subjects {
		sc := *sub
		sc.Chapters = make([]Chapter, len(sub.Chapters))
		copy(sc.Chapters, sub.Chapters)
		for i := range sc.Chapters {
			units := make([]bool, len(sub.Chapters[i].UnitsDone))
			copy(units, sub.Chapters[i].UnitsDone)
			sc.Chapters[i].UnitsDone = units
		}
		cp.Subjects[name] = &sc
	}
	cp.Tasks = append([]Task(nil), p.Tasks...)
	cp.MockTests = append([]MockTest(nil), p.MockTests...)
	cp.History = make(History, len(p.History))
	for day, mins := range p.History {
		cp.History[day] = mins
	}
	if p.Settings.Extra != nil {
		cp.Settings.Extra = make(map[string]any, len(p.Settings.Extra))
		for k, v := range p.Settings.Extra {
			cp.Settings.Extra[k] = v
		}
	}
	return &cp
}
