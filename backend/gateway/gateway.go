// Package gateway — единственная точка записи в профиль. Каждая мутация
// тотальна и атомарна: она либо возвращает новый снимок, либо исходный
// без изменений. Частично применённых мутаций не бывает — команды
// работают на глубокой копии.
package gateway

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"planner/backend/engine"
	"planner/backend/models"
)

// ErrNoOp сигнализирует, что команда отвергнута валидацией и профиль
// не изменился. Это штатный исход, не сбой: вызывающий просто отдаёт
// прежний снимок.
var ErrNoOp = errors.New("gateway: mutation rejected, profile unchanged")

type Gateway struct {
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

func New(loc *time.Location) *Gateway {
	if loc == nil {
		loc = time.Local
	}
	return &Gateway{
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock подменяет источник времени и идентификаторов в тестах.
func (g *Gateway) WithClock(now func() time.Time, newID func() string) *Gateway {
	if now != nil {
		g.now = now
	}
	if newID != nil {
		g.newID = newID
	}
	return g
}

// AddChapter добавляет главу предмету. Пустое имя или неположительное
// число лекций — no-op.
func (g *Gateway) AddChapter(p *models.Profile, subject models.SubjectName, name, grade string, totalUnits int) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || totalUnits <= 0 {
		return p, ErrNoOp
	}
	if grade != "11" && grade != "12" {
		grade = "11"
	}
	next := p.Clone()
	sub, ok := next.Subjects[subject]
	if !ok || sub == nil {
		return p, ErrNoOp
	}
	sub.Chapters = append(sub.Chapters, models.Chapter{
		ID:         g.newID(),
		Name:       name,
		Grade:      grade,
		TotalUnits: totalUnits,
		UnitsDone:  make([]bool, totalUnits),
	})
	return next, nil
}

// ToggleUnit переключает одну отметку лекции. Индекс вне диапазона
// игнорируется, чтобы не повредить инвариант длины массива.
func (g *Gateway) ToggleUnit(p *models.Profile, subject models.SubjectName, chapterID string, index int) (*models.Profile, error) {
	next := p.Clone()
	sub, ok := next.Subjects[subject]
	if !ok || sub == nil {
		return p, ErrNoOp
	}
	for i := range sub.Chapters {
		ch := &sub.Chapters[i]
		if ch.ID != chapterID {
			continue
		}
		if index < 0 || index >= len(ch.UnitsDone) {
			return p, ErrNoOp
		}
		ch.UnitsDone[index] = !ch.UnitsDone[index]
		return next, nil
	}
	return p, ErrNoOp
}

// DeleteChapter удаляет главу по точному id; остальные главы и их
// отметки не затрагиваются.
func (g *Gateway) DeleteChapter(p *models.Profile, subject models.SubjectName, chapterID string) (*models.Profile, error) {
	next := p.Clone()
	sub, ok := next.Subjects[subject]
	if !ok || sub == nil {
		return p, ErrNoOp
	}
	for i := range sub.Chapters {
		if sub.Chapters[i].ID == chapterID {
			sub.Chapters = append(sub.Chapters[:i], sub.Chapters[i+1:]...)
			return next, nil
		}
	}
	return p, ErrNoOp
}

// AddTask добавляет задачу в начало списка: свежие задачи сверху.
func (g *Gateway) AddTask(p *models.Profile, text, subjectTag string) (*models.Profile, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return p, ErrNoOp
	}
	next := p.Clone()
	task := models.Task{ID: g.newID(), Text: text, SubjectTag: subjectTag}
	next.Tasks = append([]models.Task{task}, next.Tasks...)
	return next, nil
}

func (g *Gateway) ToggleTask(p *models.Profile, taskID string) (*models.Profile, error) {
	next := p.Clone()
	for i := range next.Tasks {
		if next.Tasks[i].ID == taskID {
			next.Tasks[i].Completed = !next.Tasks[i].Completed
			return next, nil
		}
	}
	return p, ErrNoOp
}

func (g *Gateway) DeleteTask(p *models.Profile, taskID string) (*models.Profile, error) {
	next := p.Clone()
	for i := range next.Tasks {
		if next.Tasks[i].ID == taskID {
			next.Tasks = append(next.Tasks[:i], next.Tasks[i+1:]...)
			return next, nil
		}
	}
	return p, ErrNoOp
}

// MockTestInput — данные нового пробника от пользователя.
type MockTestInput struct {
	ExamType models.ExamName `json:"exam_type"`
	Name     string          `json:"name"`
	Date     string          `json:"date"`
	Physics  float64         `json:"p"`
	Chem     float64         `json:"c"`
	Maths    float64         `json:"m"`
	MaxMarks float64         `json:"max_marks"`
}

// AddMockTest записывает пробник. Сумма всегда пересчитывается из
// трёх предметных баллов, сохранённому значению не доверяем. Максимум
// баллов фиксирован каталогом; для экзаменов переменного формата
// берётся пользовательский, а при его отсутствии — значение по умолчанию.
func (g *Gateway) AddMockTest(p *models.Profile, in MockTestInput) (*models.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Date == "" || !in.ExamType.IsValid() {
		return p, ErrNoOp
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return p, ErrNoOp
	}
	in.Physics = math.Max(in.Physics, 0)
	in.Chem = math.Max(in.Chem, 0)
	in.Maths = math.Max(in.Maths, 0)

	info := models.ExamCatalog[in.ExamType]
	maxMarks := info.MaxMarks
	if info.VariableMarks() {
		maxMarks = in.MaxMarks
		if maxMarks <= 0 {
			maxMarks = models.DefaultAdvancedMaxMarks
		}
	}

	next := p.Clone()
	next.MockTests = append(next.MockTests, models.MockTest{
		ID:       g.newID(),
		ExamType: in.ExamType,
		Name:     in.Name,
		Date:     in.Date,
		Physics:  in.Physics,
		Chem:     in.Chem,
		Maths:    in.Maths,
		Total:    in.Physics + in.Chem + in.Maths,
		MaxMarks: maxMarks,
	})
	return next, nil
}

func (g *Gateway) DeleteMockTest(p *models.Profile, testID string) (*models.Profile, error) {
	next := p.Clone()
	for i := range next.MockTests {
		if next.MockTests[i].ID == testID {
			next.MockTests = append(next.MockTests[:i], next.MockTests[i+1:]...)
			return next, nil
		}
	}
	return p, ErrNoOp
}

// CommitSession сворачивает завершённый отрезок таймера в профиль.
// Единственная мутация, трогающая сразу три поля: секунды предмета,
// минуты дня в истории и XP — все три вместе или ни одного.
func (g *Gateway) CommitSession(p *models.Profile, subject models.SubjectName, seconds int) (*models.Profile, error) {
	if seconds <= 0 {
		return p, ErrNoOp
	}
	next := p.Clone()
	sub, ok := next.Subjects[subject]
	if !ok || sub == nil {
		return p, ErrNoOp
	}
	mins := math.Round(float64(seconds)/60*100) / 100
	day := engine.DayKey(g.now(), g.loc)

	sub.TimeSpentSeconds += seconds
	next.History[day] = math.Round((next.History[day]+mins)*100) / 100
	next.XP += int(math.Floor(mins))
	return next, nil
}

// SetDailyGoal меняет дневную цель в часах.
func (g *Gateway) SetDailyGoal(p *models.Profile, hours float64) (*models.Profile, error) {
	if hours <= 0 || hours > 24 {
		return p, ErrNoOp
	}
	next := p.Clone()
	next.DailyGoalHours = hours
	return next, nil
}

// SelectExams обновляет набор экзаменов. Предметы для новых экзаменов
// создаются, накопленное время старых никогда не стирается.
func (g *Gateway) SelectExams(p *models.Profile, exams []models.ExamName) (*models.Profile, error) {
	if len(exams) == 0 {
		return p, ErrNoOp
	}
	seen := make(map[models.ExamName]bool)
	var valid []models.ExamName
	for _, e := range exams {
		if !e.IsValid() || seen[e] {
			continue
		}
		seen[e] = true
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return p, ErrNoOp
	}
	next := p.Clone()
	next.SelectedExams = valid
	for _, s := range models.SubjectsFor(valid) {
		if next.Subjects[s] == nil {
			next.Subjects[s] = &models.Subject{Chapters: []models.Chapter{}}
		}
	}
	return next, nil
}

// UpdateSettings заменяет настройки целиком; ядро их не интерпретирует.
func (g *Gateway) UpdateSettings(p *models.Profile, s models.Settings) (*models.Profile, error) {
	next := p.Clone()
	next.Settings = s
	return next, nil
}

// Reset возвращает профиль к значениям по умолчанию. Единственный путь,
// на котором время и XP уменьшаются.
func (g *Gateway) Reset(p *models.Profile) (*models.Profile, error) {
	return models.DefaultProfile(p.SelectedExams), nil
}
