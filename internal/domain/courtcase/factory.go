package courtcase

import (
	"time"
)

const unknownParty = "Unknown"

// NewFromCreateRequest builds a Case from a validated create payload. The ID
// is left zero for the storage layer to assign.
func NewFromCreateRequest(req CreateCaseRequest) (Case, error) {
	docketed, err := ParseDocketDate(req.DocketedDate)

	if err != nil {
		return Case{}, err
	}

	now := time.Now().UTC()

	c := Case{
		CaseNumber:       req.CaseNumber,
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Petitioner:       req.Petitioner,
		Respondent:       req.Respondent,
		DocketedDate:     docketed,
		CourtProceedings: req.CourtProceedings,
		PartiesInvolved:  req.PartiesInvolved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if c.Petitioner == "" {
		c.Petitioner = unknownParty
	}

	if c.Respondent == "" {
		c.Respondent = unknownParty
	}

	if c.CourtProceedings == nil {
		c.CourtProceedings = []Proceeding{}
	}

	if c.PartiesInvolved == nil {
		c.PartiesInvolved = []Party{}
	}

	return c, nil
}

// ApplyUpdate merges the supplied fields of a patch payload over an existing
// case and refreshes UpdatedAt. Absent fields are left unchanged.
func (c Case) ApplyUpdate(req UpdateCaseRequest) (Case, error) {
	if req.Title != nil {
		c.Title = *req.Title
	}

	if req.Description != nil {
		c.Description = *req.Description
	}

	if req.Status != nil {
		c.Status = *req.Status
	}

	if req.Petitioner != nil {
		c.Petitioner = *req.Petitioner
	}

	if req.Respondent != nil {
		c.Respondent = *req.Respondent
	}

	if req.DocketedDate != nil {
		docketed, err := ParseDocketDate(*req.DocketedDate)

		if err != nil {
			return Case{}, err
		}

		c.DocketedDate = docketed
	}

	if req.CourtProceedings != nil {
		c.CourtProceedings = req.CourtProceedings
	}

	if req.PartiesInvolved != nil {
		c.PartiesInvolved = req.PartiesInvolved
	}

	c.UpdatedAt = time.Now().UTC()

	return c, nil
}
