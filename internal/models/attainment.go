package models

import "time"

// AssessmentContribution breaks down one assessment group's share of a
// student's CO attainment. Contribution is the weight-share of the group
// percentage after normalisation over contributing weight.
type AssessmentContribution struct {
	AssessmentID   string         `json:"assessment_id"`
	AssessmentType AssessmentType `json:"assessment_type"`
	Weightage      float64        `json:"weightage"`
	ObtainedMarks  float64        `json:"obtained_marks"`
	MaxMarks       float64        `json:"max_marks"`
	Percentage     float64        `json:"percentage"`
	Contribution   float64        `json:"contribution"`
}

// StudentCOAttainment is one student's attainment of one course outcome.
type StudentCOAttainment struct {
	StudentID          string                   `json:"student_id"`
	CourseID           string                   `json:"course_id"`
	SectionID          string                   `json:"section_id,omitempty"`
	COID               string                   `json:"co_id"`
	TotalQuestions     int                      `json:"total_questions"`
	AttemptedQuestions int                      `json:"attempted_questions"`
	ObtainedMarks      float64                  `json:"obtained_marks"`
	MaxMarks           float64                  `json:"max_marks"`
	Percentage         float64                  `json:"percentage"`
	WeightedPercentage float64                  `json:"weighted_percentage"`
	MetTarget          bool                     `json:"met_target"`
	CalculationNote    string                   `json:"calculation_note,omitempty"`
	Contributions      []AssessmentContribution `json:"contributions,omitempty"`
}

// SectionCOAttainment rolls one section's student results up for one CO.
type SectionCOAttainment struct {
	CourseID                  string                `json:"course_id"`
	SectionID                 string                `json:"section_id"`
	COID                      string                `json:"co_id"`
	COCode                    string                `json:"co_code"`
	TotalStudents             int                   `json:"total_students"`
	StudentsMeetingTarget     int                   `json:"students_meeting_target"`
	PercentageMeetingTarget   float64               `json:"percentage_meeting_target"`
	AttainmentLevel           int                   `json:"attainment_level"`
	AverageAttainment         float64               `json:"average_attainment"`
	WeightedAverageAttainment float64               `json:"weighted_average_attainment"`
	Students                  []StudentCOAttainment `json:"students,omitempty"`
}

// CourseCOAttainment pools every section of the course for one CO.
// AttainmentValue is the fractional 0-3 figure consumed by PO roll-up: the
// mean of the per-section attainment levels (the pooled discrete level when
// the course has a single section).
type CourseCOAttainment struct {
	CourseID                  string                `json:"course_id"`
	COID                      string                `json:"co_id"`
	COCode                    string                `json:"co_code"`
	TotalStudents             int                   `json:"total_students"`
	StudentsMeetingTarget     int                   `json:"students_meeting_target"`
	PercentageMeetingTarget   float64               `json:"percentage_meeting_target"`
	AttainmentLevel           int                   `json:"attainment_level"`
	AttainmentValue           float64               `json:"attainment_value"`
	AverageAttainment         float64               `json:"average_attainment"`
	WeightedAverageAttainment float64               `json:"weighted_average_attainment"`
	Sections                  []SectionCOAttainment `json:"sections,omitempty"`
}

// ComprehensiveCOAttainment is the full course result tree: every CO across
// every section plus the course roll-up, with the persistence outcome.
type ComprehensiveCOAttainment struct {
	CourseID     string               `json:"course_id"`
	AcademicYear string               `json:"academic_year"`
	Outcomes     []CourseCOAttainment `json:"outcomes"`
	SaveReport   *SaveReport          `json:"save_report,omitempty"`
	CalculatedAt time.Time            `json:"calculated_at"`
}

// StudentCOAttainmentRow is the persisted audit row. The composite key is
// (course_id, section_id, co_id, student_id, academic_year); section_id ''
// marks course-scope rows.
type StudentCOAttainmentRow struct {
	ID                 string    `db:"id" json:"id"`
	CourseID           string    `db:"course_id" json:"course_id"`
	SectionID          string    `db:"section_id" json:"section_id"`
	COID               string    `db:"co_id" json:"co_id"`
	StudentID          string    `db:"student_id" json:"student_id"`
	AcademicYear       string    `db:"academic_year" json:"academic_year"`
	Percentage         float64   `db:"percentage" json:"percentage"`
	WeightedPercentage float64   `db:"weighted_percentage" json:"weighted_percentage"`
	MetTarget          bool      `db:"met_target" json:"met_target"`
	CalculatedAt       time.Time `db:"calculated_at" json:"calculated_at"`
}

// SaveFailure records one row that could not be persisted.
type SaveFailure struct {
	COID      string `json:"co_id"`
	SectionID string `json:"section_id"`
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// SaveReport summarises a batch persistence outcome so callers can retry
// only the failed rows.
type SaveReport struct {
	Saved    int           `json:"saved"`
	Failures []SaveFailure `json:"failures,omitempty"`
}

// POAttainment is the computed attainment of one program outcome.
type POAttainment struct {
	POID               string  `json:"po_id"`
	POCode             string  `json:"po_code"`
	MappedCOCount      int     `json:"mapped_co_count"`
	DirectAttainment   float64 `json:"direct_attainment"`
	IndirectAttainment float64 `json:"indirect_attainment"`
	FinalAttainment    float64 `json:"final_attainment"`
	TargetLevel        float64 `json:"target_level"`
	AttainmentLevel    int     `json:"attainment_level"`
	Status             string  `json:"status"`
	Attained           bool    `json:"attained"`
}

// PO status labels on the 0-3 scale.
const (
	POStatusNotAttained = "NOT_ATTAINED"
	POStatusLevel1      = "LEVEL_1"
	POStatusLevel2      = "LEVEL_2"
	POStatusLevel3      = "LEVEL_3"
)

// ProgramPOAttainmentSummary aggregates every PO of a program (optionally
// scoped to a batch) with the NBA compliance verdict.
type ProgramPOAttainmentSummary struct {
	ProgramID       string         `json:"program_id"`
	BatchID         string         `json:"batch_id,omitempty"`
	AcademicYear    string         `json:"academic_year,omitempty"`
	DirectWeight    float64        `json:"direct_weight"`
	IndirectWeight  float64        `json:"indirect_weight"`
	Outcomes        []POAttainment `json:"outcomes"`
	ComplianceScore float64        `json:"compliance_score"`
	IsCompliant     bool           `json:"is_compliant"`
	CalculatedAt    time.Time      `json:"calculated_at"`
}

// WeightConfig is the injected direct/indirect blend configuration. It is a
// value object so calculations stay pure and testable.
type WeightConfig struct {
	DirectWeight       float64 `json:"direct_weight" validate:"gte=0,lte=1"`
	IndirectWeight     float64 `json:"indirect_weight" validate:"gte=0,lte=1"`
	POTargetLevel      float64 `json:"po_target_level" validate:"gte=0,lte=3"`
	ComplianceMinRatio float64 `json:"compliance_min_ratio" validate:"gte=0,lte=1"`
}
