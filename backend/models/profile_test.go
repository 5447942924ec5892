package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultProfile(t *testing.T) {
	t.Run("empty selection falls back to jee main", func(t *testing.T) {
		p := DefaultProfile(nil)
		assert.Equal(t, []ExamName{ExamJEEMain}, p.SelectedExams)
		assert.Contains(t, p.Subjects, SubjectPhysics)
		assert.Contains(t, p.Subjects, SubjectMaths)
		assert.NotContains(t, p.Subjects, SubjectBiology)
		assert.Equal(t, float64(DefaultDailyGoalHours), p.DailyGoalHours)
		assert.Equal(t, 0, p.XP)
	})

	t.Run("neet selection swaps maths for biology", func(t *testing.T) {
		p := DefaultProfile([]ExamName{ExamNEET})
		assert.Contains(t, p.Subjects, SubjectBiology)
		assert.NotContains(t, p.Subjects, SubjectMaths)
		for _, chem := range ChemistrySubjects {
			assert.Contains(t, p.Subjects, chem)
		}
	})

	t.Run("combined selection unions subjects", func(t *testing.T) {
		p := DefaultProfile([]ExamName{ExamJEEMain, ExamNEET})
		assert.Contains(t, p.Subjects, SubjectMaths)
		assert.Contains(t, p.Subjects, SubjectBiology)
	})
}

func TestChapter(t *testing.T) {
	ch := Chapter{ID: "x", Name: "Waves", TotalUnits: 4, UnitsDone: []bool{true, false, true, false}}
	assert.True(t, ch.Valid())
	assert.Equal(t, 2, ch.DoneUnits())
	assert.Equal(t, 50, ch.CompletionPercent())

	assert.False(t, Chapter{TotalUnits: 0}.Valid())
	assert.False(t, Chapter{TotalUnits: 3, UnitsDone: []bool{true}}.Valid())
}

func TestNormalize(t *testing.T) {
	t.Run("repairs tampered document", func(t *testing.T) {
		p := &Profile{
			DailyGoalHours: -2,
			XP:             -10,
			Subjects: map[SubjectName]*Subject{
				SubjectPhysics: {
					TimeSpentSeconds: -5,
					Chapters: []Chapter{
						{ID: "a", Name: "Units", TotalUnits: 3, UnitsDone: []bool{true}},
						{ID: "b", Name: "Heat", TotalUnits: 2, UnitsDone: []bool{true, false, true, true}},
					},
				},
			},
			MockTests: []MockTest{
				{ID: "m1", ExamType: ExamJEEMain, Physics: 80, Chem: 60, Maths: 70, Total: 999},
				{ID: "m2", ExamType: ExamJEEAdvanced, Physics: 50, Chem: 40, Maths: 30},
			},
			History: History{"2026-01-01": -30},
		}

		p.Normalize()

		assert.Equal(t, float64(DefaultDailyGoalHours), p.DailyGoalHours)
		assert.Equal(t, 0, p.XP)
		assert.Equal(t, []ExamName{ExamJEEMain}, p.SelectedExams)
		assert.Equal(t, 0, p.Subjects[SubjectPhysics].TimeSpentSeconds)

		chapters := p.Subjects[SubjectPhysics].Chapters
		assert.Len(t, chapters[0].UnitsDone, 3, "недостающие отметки добиваются false")
		assert.Len(t, chapters[1].UnitsDone, 2, "лишние отметки отрезаются")
		assert.True(t, chapters[0].Valid())
		assert.True(t, chapters[1].Valid())

		// Сохранённой сумме не доверяем
		assert.Equal(t, 210.0, p.MockTests[0].Total)
		assert.Equal(t, 300.0, p.MockTests[0].MaxMarks)
		// Advanced без максимума получает значение по умолчанию
		assert.Equal(t, float64(DefaultAdvancedMaxMarks), p.MockTests[1].MaxMarks)

		assert.Equal(t, 0.0, p.History["2026-01-01"])
	})

	t.Run("fills nil collections", func(t *testing.T) {
		p := &Profile{}
		p.Normalize()
		assert.NotNil(t, p.Tasks)
		assert.NotNil(t, p.MockTests)
		assert.NotNil(t, p.History)
		assert.NotNil(t, p.Subjects[SubjectPhysics])
	})
}

func TestClone(t *testing.T) {
	p := DefaultProfile([]ExamName{ExamJEEMain})
	p.Subjects[SubjectPhysics].Chapters = []Chapter{
		{ID: "a", Name: "Kinematics", TotalUnits: 2, UnitsDone: []bool{true, false}},
	}
	p.Tasks = []Task{{ID: "t1", Text: "Revise"}}
	p.History["2026-01-01"] = 60
	p.Settings.Extra = map[string]any{"accent": "violet"}

	cp := p.Clone()
	cp.XP = 500
	cp.Subjects[SubjectPhysics].TimeSpentSeconds = 100
	cp.Subjects[SubjectPhysics].Chapters[0].UnitsDone[1] = true
	cp.Tasks[0].Completed = true
	cp.History["2026-01-01"] = 0
	cp.Settings.Extra["accent"] = "red"

	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 0, p.Subjects[SubjectPhysics].TimeSpentSeconds)
	assert.False(t, p.Subjects[SubjectPhysics].Chapters[0].UnitsDone[1])
	assert.False(t, p.Tasks[0].Completed)
	assert.Equal(t, 60.0, p.History["2026-01-01"])
	assert.Equal(t, "violet", p.Settings.Extra["accent"])
}

func TestMockTestValid(t *testing.T) {
	assert.True(t, MockTest{Physics: 1, Chem: 2, Maths: 3, Total: 6, MaxMarks: 300}.Valid())
	assert.False(t, MockTest{Physics: 1, Chem: 2, Maths: 3, Total: 7, MaxMarks: 300}.Valid())
	assert.False(t, MockTest{Total: 0, MaxMarks: 0}.Valid())
}
