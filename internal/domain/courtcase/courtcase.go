package courtcase

import (
	"errors"
	"time"
)

// Case is a docketed legal case record.
type Case struct {
	ID               int64        `json:"id"`
	CaseNumber       string       `json:"caseNumber"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Status           string       `json:"status"`
	Petitioner       string       `json:"petitioner"`
	Respondent       string       `json:"respondent"`
	DocketedDate     time.Time    `json:"docketedDate"`
	CourtProceedings []Proceeding `json:"courtProceedings"`
	PartiesInvolved  []Party      `json:"partiesInvolved"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Proceeding is a dated event entry within a case's history.
type Proceeding struct {
	Date        string `json:"date" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// Party is a named participant in a case.
type Party struct {
	Name    string `json:"name" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

var (
	ErrNotFound            = errors.New("case not found")
	ErrDuplicateCaseNumber = errors.New("case number already exists")
	ErrInvalidDocketDate   = errors.New("docketed date is not a valid date")
)

type CreateCaseRequest struct {
	CaseNumber       string       `json:"caseNumber" binding:"required"`
	Title            string       `json:"title" binding:"required"`
	Description      string       `json:"description" binding:"required"`
	Status           string       `json:"status" binding:"required,oneof=open pending closed"`
	Petitioner       string       `json:"petitioner" binding:"required"`
	Respondent       string       `json:"respondent" binding:"required"`
	DocketedDate     string       `json:"docketedDate" binding:"required"`
	CourtProceedings []Proceeding `json:"courtProceedings" binding:"required,dive"`
	PartiesInvolved  []Party      `json:"partiesInvolved" binding:"required,dive"`
}

// a partial payload; nil fields are left unchanged. The case number is
// immutable after creation and cannot be patched.
type UpdateCaseRequest struct {
	Title            *string      `json:"title" binding:"omitempty,min=1"`
	Description      *string      `json:"description" binding:"omitempty,min=1"`
	Status           *string      `json:"status" binding:"omitempty,oneof=open pending closed"`
	Petitioner       *string      `json:"petitioner" binding:"omitempty,min=1"`
	Respondent       *string      `json:"respondent" binding:"omitempty,min=1"`
	DocketedDate     *string      `json:"docketedDate"`
	CourtProceedings []Proceeding `json:"courtProceedings" binding:"omitempty,dive"`
	PartiesInvolved  []Party      `json:"partiesInvolved" binding:"omitempty,dive"`
}

// ParseDocketDate accepts either a full RFC3339 timestamp or a plain
// YYYY-MM-DD date, which is what the admin form submits.
func ParseDocketDate(s string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02"}

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidDocketDate
}
