package models

// AssessmentType categorises an assessment instrument.
type AssessmentType string

const (
	AssessmentTypeExam       AssessmentType = "EXAM"
	AssessmentTypeQuiz       AssessmentType = "QUIZ"
	AssessmentTypeAssignment AssessmentType = "ASSIGNMENT"
	AssessmentTypeProject    AssessmentType = "PROJECT"
)

// Assessment belongs to one course (optionally one section) and declares a
// weightage percentage independently of its siblings: the weightages of the
// assessments contributing to one CO need not sum to 100.
type Assessment struct {
	ID        string         `db:"id" json:"id"`
	CourseID  string         `db:"course_id" json:"course_id"`
	SectionID *string        `db:"section_id" json:"section_id,omitempty"`
	Type      AssessmentType `db:"type" json:"type"`
	Name      string         `db:"name" json:"name"`
	Weightage float64        `db:"weightage" json:"weightage"`
	MaxMarks  float64        `db:"max_marks" json:"max_marks"`
	Active    bool           `db:"active" json:"active"`
}

// Question belongs to exactly one assessment.
type Question struct {
	ID           string  `db:"id" json:"id"`
	AssessmentID string  `db:"assessment_id" json:"assessment_id"`
	Number       string  `db:"number" json:"number"`
	MaxMarks     float64 `db:"max_marks" json:"max_marks"`

	// Denormalised from the owning assessment for grouping during
	// calculation.
	AssessmentType      AssessmentType `db:"assessment_type" json:"assessment_type"`
	AssessmentWeightage float64        `db:"assessment_weightage" json:"assessment_weightage"`
}

// MarkAttempt is the tagged attempt variant at the data-access boundary.
// A question the student never answered surfaces as Attempted=false, which
// is semantically distinct from an attempt scored zero.
type MarkAttempt struct {
	QuestionID string
	Attempted  bool
	Obtained   float64
}

// Attempted constructs an attempted mark.
func Attempted(questionID string, obtained float64) MarkAttempt {
	return MarkAttempt{QuestionID: questionID, Attempted: true, Obtained: obtained}
}

// NotAttempted constructs the absent-mark variant.
func NotAttempted(questionID string) MarkAttempt {
	return MarkAttempt{QuestionID: questionID}
}
