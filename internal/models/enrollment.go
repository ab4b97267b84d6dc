package models

import "time"

// EnrollmentStatus captures enrollment lifecycle.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// Enrollment links a student to a course; the section flows from the
// student's section assignment. Only active enrollments participate in
// attainment aggregates.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	CourseID     string           `db:"course_id" json:"course_id"`
	SectionID    string           `db:"section_id" json:"section_id"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	JoinedAt     time.Time        `db:"joined_at" json:"joined_at"`
}
