package gateway

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/backend/models"
)

// testGateway даёт шлюз с фиксированными часами и счётчиком id.
func testGateway() *Gateway {
	seq := 0
	return New(time.UTC).WithClock(
		func() time.Time { return time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC) },
		func() string { seq++; return fmt.Sprintf("id-%d", seq) },
	)
}

func TestCommitSession(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile([]models.ExamName{models.ExamJEEMain})
	p.XP = 10
	p.History["2026-03-10"] = 5

	next, err := g.CommitSession(p, models.SubjectPhysics, 125)
	require.NoError(t, err)

	// Все три поля двигаются вместе
	assert.Equal(t, 125, next.Subjects[models.SubjectPhysics].TimeSpentSeconds)
	assert.Equal(t, 7.08, next.History["2026-03-10"])
	assert.Equal(t, 12, next.XP)

	// Исходный снимок не тронут
	assert.Equal(t, 0, p.Subjects[models.SubjectPhysics].TimeSpentSeconds)
	assert.Equal(t, 5.0, p.History["2026-03-10"])
	assert.Equal(t, 10, p.XP)

	t.Run("zero seconds is a no-op", func(t *testing.T) {
		same, err := g.CommitSession(p, models.SubjectPhysics, 0)
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Same(t, p, same)
	})

	t.Run("unknown subject is a no-op", func(t *testing.T) {
		same, err := g.CommitSession(p, models.SubjectBiology, 60)
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Same(t, p, same)
	})

	t.Run("short session gives zero xp but keeps minutes", func(t *testing.T) {
		next, err := g.CommitSession(p, models.SubjectMaths, 30)
		require.NoError(t, err)
		assert.Equal(t, 5.5, next.History["2026-03-10"])
		assert.Equal(t, 10, next.XP)
	})
}

func TestChapters(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile([]models.ExamName{models.ExamJEEMain})

	p, err := g.AddChapter(p, models.SubjectPhysics, "Kinematics", "11", 3)
	require.NoError(t, err)
	p, err = g.AddChapter(p, models.SubjectPhysics, "Optics", "12", 2)
	require.NoError(t, err)

	chapters := p.Subjects[models.SubjectPhysics].Chapters
	require.Len(t, chapters, 2)
	assert.Equal(t, "id-1", chapters[0].ID)
	assert.Equal(t, []bool{false, false, false}, chapters[0].UnitsDone)

	t.Run("blank name rejected", func(t *testing.T) {
		same, err := g.AddChapter(p, models.SubjectPhysics, "   ", "11", 3)
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Same(t, p, same)
	})

	t.Run("unknown grade defaults to 11", func(t *testing.T) {
		next, err := g.AddChapter(p, models.SubjectPhysics, "Gravitation", "13", 2)
		require.NoError(t, err)
		assert.Equal(t, "11", next.Subjects[models.SubjectPhysics].Chapters[2].Grade)
	})

	t.Run("toggle flips a single unit", func(t *testing.T) {
		next, err := g.ToggleUnit(p, models.SubjectPhysics, "id-1", 1)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, true, false}, next.Subjects[models.SubjectPhysics].Chapters[0].UnitsDone)
		// Соседняя глава не задета
		assert.Equal(t, []bool{false, false}, next.Subjects[models.SubjectPhysics].Chapters[1].UnitsDone)
	})

	t.Run("toggle out of range is a no-op", func(t *testing.T) {
		same, err := g.ToggleUnit(p, models.SubjectPhysics, "id-1", 3)
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Same(t, p, same)
		_, err = g.ToggleUnit(p, models.SubjectPhysics, "id-1", -1)
		assert.ErrorIs(t, err, ErrNoOp)
	})

	t.Run("delete removes exactly one chapter", func(t *testing.T) {
		next, err := g.DeleteChapter(p, models.SubjectPhysics, "id-1")
		require.NoError(t, err)
		rest := next.Subjects[models.SubjectPhysics].Chapters
		require.Len(t, rest, 1)
		assert.Equal(t, "Optics", rest[0].Name)

		_, err = g.DeleteChapter(p, models.SubjectPhysics, "missing")
		assert.ErrorIs(t, err, ErrNoOp)
	})
}

func TestTasks(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile(nil)

	p, err := g.AddTask(p, "Revise thermodynamics", "Physics")
	require.NoError(t, err)
	p, err = g.AddTask(p, "Mock test analysis", "")
	require.NoError(t, err)

	// Свежая задача сверху
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "Mock test analysis", p.Tasks[0].Text)
	assert.Equal(t, "Revise thermodynamics", p.Tasks[1].Text)

	t.Run("blank text rejected", func(t *testing.T) {
		_, err := g.AddTask(p, "  ", "")
		assert.ErrorIs(t, err, ErrNoOp)
	})

	t.Run("toggle", func(t *testing.T) {
		next, err := g.ToggleTask(p, p.Tasks[0].ID)
		require.NoError(t, err)
		assert.True(t, next.Tasks[0].Completed)
		assert.False(t, p.Tasks[0].Completed)

		_, err = g.ToggleTask(p, "missing")
		assert.ErrorIs(t, err, ErrNoOp)
	})

	t.Run("delete", func(t *testing.T) {
		next, err := g.DeleteTask(p, p.Tasks[1].ID)
		require.NoError(t, err)
		require.Len(t, next.Tasks, 1)
		assert.Equal(t, "Mock test analysis", next.Tasks[0].Text)
	})
}

func TestAddMockTest(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile(nil)

	t.Run("total recomputed from parts", func(t *testing.T) {
		next, err := g.AddMockTest(p, MockTestInput{
			ExamType: models.ExamJEEMain,
			Name:     "AITS 1",
			Date:     "2026-03-01",
			Physics:  80, Chem: 65, Maths: 72,
		})
		require.NoError(t, err)
		require.Len(t, next.MockTests, 1)
		got := next.MockTests[0]
		assert.Equal(t, 217.0, got.Total)
		assert.Equal(t, 300.0, got.MaxMarks, "максимум Mains фиксирован каталогом")
		assert.True(t, got.Valid())
	})

	t.Run("advanced takes user max marks", func(t *testing.T) {
		next, err := g.AddMockTest(p, MockTestInput{
			ExamType: models.ExamJEEAdvanced,
			Name:     "Adv FST",
			Date:     "2026-04-01",
			Physics:  50, Chem: 40, Maths: 45,
			MaxMarks: 306,
		})
		require.NoError(t, err)
		assert.Equal(t, 306.0, next.MockTests[0].MaxMarks)
	})

	t.Run("advanced without max marks falls back", func(t *testing.T) {
		next, err := g.AddMockTest(p, MockTestInput{
			ExamType: models.ExamJEEAdvanced,
			Name:     "Adv FST",
			Date:     "2026-04-01",
			Physics:  50, Chem: 40, Maths: 45,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(models.DefaultAdvancedMaxMarks), next.MockTests[0].MaxMarks)
	})

	t.Run("bad input rejected", func(t *testing.T) {
		_, err := g.AddMockTest(p, MockTestInput{ExamType: models.ExamJEEMain, Name: "", Date: "2026-03-01"})
		assert.ErrorIs(t, err, ErrNoOp)
		_, err = g.AddMockTest(p, MockTestInput{ExamType: models.ExamJEEMain, Name: "x", Date: "01/03/2026"})
		assert.ErrorIs(t, err, ErrNoOp)
		_, err = g.AddMockTest(p, MockTestInput{ExamType: "upsc", Name: "x", Date: "2026-03-01"})
		assert.ErrorIs(t, err, ErrNoOp)
	})
}

func TestSetDailyGoal(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile(nil)

	next, err := g.SetDailyGoal(p, 6.5)
	require.NoError(t, err)
	assert.Equal(t, 6.5, next.DailyGoalHours)

	for _, h := range []float64{0, -1, 25} {
		_, err := g.SetDailyGoal(p, h)
		assert.ErrorIs(t, err, ErrNoOp)
	}
}

func TestSelectExams(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile([]models.ExamName{models.ExamJEEMain})
	p.Subjects[models.SubjectMaths].TimeSpentSeconds = 777

	next, err := g.SelectExams(p, []models.ExamName{models.ExamNEET, models.ExamNEET, "upsc"})
	require.NoError(t, err)
	assert.Equal(t, []models.ExamName{models.ExamNEET}, next.SelectedExams)
	// Новый предмет создан, накопленное время старого не стёрто
	assert.Contains(t, next.Subjects, models.SubjectBiology)
	assert.Equal(t, 777, next.Subjects[models.SubjectMaths].TimeSpentSeconds)

	_, err = g.SelectExams(p, nil)
	assert.ErrorIs(t, err, ErrNoOp)
	_, err = g.SelectExams(p, []models.ExamName{"upsc"})
	assert.ErrorIs(t, err, ErrNoOp)
}

func TestReset(t *testing.T) {
	g := testGateway()
	p := models.DefaultProfile([]models.ExamName{models.ExamNEET})
	p.XP = 4200
	p.History["2026-03-10"] = 300

	next, err := g.Reset(p)
	require.NoError(t, err)
	assert.Equal(t, 0, next.XP)
	assert.Empty(t, next.History)
	// Выбор экзаменов переживает сброс
	assert.Equal(t, []models.ExamName{models.ExamNEET}, next.SelectedExams)
}
