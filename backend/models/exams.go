package models

import "time"

type ExamName string

const (
	ExamJEEMain     ExamName = "jee_main"
	ExamJEEAdvanced ExamName = "jee_advanced"
	ExamNEET        ExamName = "neet"
	ExamBITSAT      ExamName = "bitsat"
)

type SubjectName string

const (
	SubjectPhysics       SubjectName = "Physics"
	SubjectMaths         SubjectName = "Maths"
	SubjectBiology       SubjectName = "Biology"
	SubjectOrganicChem   SubjectName = "Organic Chem"
	SubjectInorganicChem SubjectName = "Inorganic Chem"
	SubjectPhysicalChem  SubjectName = "Physical Chem"
)

// ChemistrySubjects — три раздела химии, в сводке по предметам они
// схлопываются в одну корзину "Chemistry".
var ChemistrySubjects = []SubjectName{SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem}

// DefaultAdvancedMaxMarks — максимум для Advanced, если пользователь
// не указал свой.
const DefaultAdvancedMaxMarks = 360

// ExamInfo описывает экзамен из фиксированного каталога.
type ExamInfo struct {
	Name     ExamName      `json:"name"`
	Label    string        `json:"label"`
	Date     time.Time     `json:"date"`
	MaxMarks float64       `json:"max_marks"` // 0 — максимум задаёт пользователь
	Subjects []SubjectName `json:"subjects"`
}

// VariableMarks сообщает, задаёт ли максимум баллов сам пользователь.
func (e ExamInfo) VariableMarks() bool {
	return e.MaxMarks == 0
}

// ExamCatalog — закрытый каталог экзаменов с датами ближайших сессий.
var ExamCatalog = map[ExamName]ExamInfo{
	ExamJEEMain: {
		Name:     ExamJEEMain,
		Label:    "JEE Main",
		Date:     time.Date(2027, time.January, 24, 0, 0, 0, 0, time.UTC),
		MaxMarks: 300,
		Subjects: []SubjectName{SubjectPhysics, SubjectMaths, SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem},
	},
	ExamJEEAdvanced: {
		Name:     ExamJEEAdvanced,
		Label:    "JEE Advanced",
		Date:     time.Date(2027, time.May, 23, 0, 0, 0, 0, time.UTC),
		MaxMarks: 0, // переменный формат
		Subjects: []SubjectName{SubjectPhysics, SubjectMaths, SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem},
	},
	ExamNEET: {
		Name:     ExamNEET,
		Label:    "NEET UG",
		Date:     time.Date(2027, time.May, 2, 0, 0, 0, 0, time.UTC),
		MaxMarks: 720,
		Subjects: []SubjectName{SubjectPhysics, SubjectBiology, SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem},
	},
	ExamBITSAT: {
		Name:     ExamBITSAT,
		Label:    "BITSAT",
		Date:     time.Date(2027, time.June, 20, 0, 0, 0, 0, time.UTC),
		MaxMarks: 390,
		Subjects: []SubjectName{SubjectPhysics, SubjectMaths, SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem},
	},
}

// IsValid проверяет, что экзамен есть в каталоге.
func (e ExamName) IsValid() bool {
	_, ok := ExamCatalog[e]
	return ok
}

// SubjectsFor возвращает объединённый набор предметов для выбранных
// экзаменов, сохраняя стабильный порядок каталога.
func SubjectsFor(exams []ExamName) []SubjectName {
	order := []SubjectName{
		SubjectPhysics, SubjectMaths, SubjectBiology,
		SubjectOrganicChem, SubjectInorganicChem, SubjectPhysicalChem,
	}
	wanted := make(map[SubjectName]bool)
	for _, e := range exams {
		info, ok := ExamCatalog[e]
		if !ok {
			continue
		}
		for _, s := range info.Subjects {
			wanted[s] = true
		}
	}
	var out []SubjectName
	for _, s := range order {
		if wanted[s] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = ExamCatalog[ExamJEEMain].Subjects
	}
	return out
}
