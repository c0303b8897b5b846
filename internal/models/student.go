package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Branches is the fixed set of branches a student may belong to.
var Branches = []string{
	"Computer Science",
	"Computer Science and Business Systems",
	"Electronics and Communication Engineering",
	"Artificial Intelligence and Data Science",
	"Mechanical Engineering",
	"Civil Engineering",
}

// ValidBranch reports whether branch is one of Branches.
func ValidBranch(branch string) bool {
	for _, b := range Branches {
		if b == branch {
			return true
		}
	}
	return false
}

const (
	MinSemester = 1
	MaxSemester = 8
)

// Semesters returns the valid semester numbers, 1 through 8.
func Semesters() []int {
	s := make([]int, 0, MaxSemester)
	for i := MinSemester; i <= MaxSemester; i++ {
		s = append(s, i)
	}
	return s
}

// Student is keyed by USN, the university serial number.
type Student struct {
	bun.BaseModel `bun:"table:students"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	Phone        string    `bun:"phone" json:"phone"`
	USN          string    `bun:"usn,unique,notnull" json:"usn"`
	Semester     int       `bun:"semester,notnull" json:"semester"`
	Branch       string    `bun:"branch,notnull" json:"branch"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	IsActive     bool      `bun:"is_active,default:true" json:"is_active"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// StudentPatch enumerates the updatable student fields; credential and
// identity fields are deliberately absent.
type StudentPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Semester *int    `json:"semester"`
	Branch   *string `json:"branch"`
	IsActive *bool   `json:"is_active"`
}

func (p *StudentPatch) Validate() error {
	if p.Semester != nil && (*p.Semester < MinSemester || *p.Semester > MaxSemester) {
		return errSemesterRange
	}
	if p.Branch != nil && !ValidBranch(*p.Branch) {
		return errInvalidBranch
	}
	return nil
}

func (p *StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Semester != nil {
		s.Semester = *p.Semester
	}
	if p.Branch != nil {
		s.Branch = *p.Branch
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}
