package models

// CourseOutcome is a specific learning outcome defined per course.
type CourseOutcome struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// ProgramOutcome is a program-level outcome that course outcomes map into.
type ProgramOutcome struct {
	ID          string `db:"id" json:"id"`
	ProgramID   string `db:"program_id" json:"program_id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// QuestionCOMapping is the many-to-many edge between questions and course
// outcomes. It carries no weight of its own: weighting flows from the
// owning assessment.
type QuestionCOMapping struct {
	QuestionID string `db:"question_id" json:"question_id"`
	COID       string `db:"co_id" json:"co_id"`
}

// COPOMapping links a course outcome to a program outcome with a
// correlation level between 1 (weak) and 3 (strong).
type COPOMapping struct {
	COID     string `db:"co_id" json:"co_id"`
	POID     string `db:"po_id" json:"po_id"`
	CourseID string `db:"course_id" json:"course_id"`
	Level    int    `db:"level" json:"level"`
}
