// Package domain defines the persistence model for form submissions. The
// type is mapped with GORM and forms the data layer of the intake service.
package domain

import "time"

// Submission represents a single intake form submission.
//
// Fields:
//   - ID: auto-assigned integer primary key; never reused.
//   - Name: submitter name, required, at most 100 characters.
//   - Email: submitter email, required, at most 100 characters; duplicates
//     are permitted, so the column is indexed but not unique.
//   - Message: optional free text, at most 1000 characters.
//   - CreatedAt: server-assigned at insert time; immutable afterwards.
//
// Rows are created through the repository and never updated or deleted by
// this system.
type Submission struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"       gorm:"type:varchar(100);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(100);not null;index:idx_email"`
	Message   string    `json:"message"    gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_created_at"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string { return "user_submissions" }
