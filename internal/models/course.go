package models

import "time"

// Program represents an accredited degree program.
type Program struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Batch groups students admitted in the same academic cycle of a program.
type Batch struct {
	ID           string `db:"id" json:"id"`
	ProgramID    string `db:"program_id" json:"program_id"`
	Name         string `db:"name" json:"name"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}

// Section groups students within a batch/course instance.
type Section struct {
	ID      string `db:"id" json:"id"`
	BatchID string `db:"batch_id" json:"batch_id"`
	Name    string `db:"name" json:"name"`
}

// Course owns its outcome target configuration.
type Course struct {
	ID           string    `db:"id" json:"id"`
	ProgramID    string    `db:"program_id" json:"program_id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ThresholdConfig is the per-course target configuration: the percentage a
// student must reach per CO, and the three student-percentage thresholds
// that classify a cohort at attainment level 1, 2 or 3.
type ThresholdConfig struct {
	TargetPercentage float64 `db:"target_percentage" json:"target_percentage"`
	Level1Threshold  float64 `db:"level1_threshold" json:"level1_threshold"`
	Level2Threshold  float64 `db:"level2_threshold" json:"level2_threshold"`
	Level3Threshold  float64 `db:"level3_threshold" json:"level3_threshold"`
}

// Valid reports whether the thresholds are usable: every figure is a
// percentage and the level thresholds are strictly increasing.
func (t ThresholdConfig) Valid() bool {
	for _, v := range []float64{t.TargetPercentage, t.Level1Threshold, t.Level2Threshold, t.Level3Threshold} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return t.Level1Threshold < t.Level2Threshold && t.Level2Threshold < t.Level3Threshold
}

// Student is a minimal read model of an enrolled student.
type Student struct {
	ID         string `db:"id" json:"id"`
	FullName   string `db:"full_name" json:"full_name"`
	RollNumber string `db:"roll_number" json:"roll_number"`
	SectionID  string `db:"section_id" json:"section_id"`
}
