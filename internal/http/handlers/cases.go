package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lostboitest/casemanage/internal/domain/courtcase"
)

// CasesStore is the data-access contract the handlers need. Both the
// postgres and the in-memory repos satisfy it.
type CasesStore interface {
	GetAll(ctx context.Context) ([]courtcase.Case, error)
	GetByID(ctx context.Context, id int64) (courtcase.Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (courtcase.Case, error)
	Create(ctx context.Context, c courtcase.Case) (courtcase.Case, error)
	Update(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error)
	Delete(ctx context.Context, id int64) error
}

type CasesHandler struct {
	repo CasesStore
}

func NewCasesHandler(repo CasesStore) *CasesHandler {
	return &CasesHandler{repo: repo}
}

// Search is the public lookup: exact case number match, no authentication.
func (h *CasesHandler) Search(ctx *gin.Context) {
	caseNumber := ctx.Query("caseNumber")

	if caseNumber == "" {
		RespondBadRequest(ctx, "Case number is required", nil)
		return
	}

	found, err := h.repo.GetByNumber(ctx.Request.Context(), caseNumber)

	if err != nil {
		if errors.Is(err, courtcase.ErrNotFound) {
			RespondNotFound(ctx, "Case not found")
			return
		}

		RespondInternal(ctx, "Could not search for case")
		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (h *CasesHandler) ListCases(ctx *gin.Context) {
	items, err := h.repo.GetAll(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Failed to fetch cases")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *CasesHandler) CreateCase(ctx *gin.Context) {
	var req courtcase.CreateCaseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	// friendlier early 400; the repo's unique constraint is the authority
	_, err := h.repo.GetByNumber(rctx, req.CaseNumber)

	if err == nil {
		RespondBadRequest(ctx, "Case number already exists", nil)
		return
	}

	if !errors.Is(err, courtcase.ErrNotFound) {
		RespondInternal(ctx, "Could not create case")
		return
	}

	newCase, err := courtcase.NewFromCreateRequest(req)

	if err != nil {
		RespondBadRequest(ctx, "Invalid case data", []FieldError{
			{Field: "docketedDate", Rule: "date", Message: "must be a parseable date"},
		})
		return
	}

	created, err := h.repo.Create(rctx, newCase)

	if err != nil {
		if errors.Is(err, courtcase.ErrDuplicateCaseNumber) {
			RespondBadRequest(ctx, "Case number already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create case")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *CasesHandler) UpdateCase(ctx *gin.Context) {
	id, ok := caseIDParam(ctx)

	if !ok {
		return
	}

	var req courtcase.UpdateCaseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		switch {
		case errors.Is(err, courtcase.ErrNotFound):
			RespondNotFound(ctx, "Case not found")
		case errors.Is(err, courtcase.ErrInvalidDocketDate):
			RespondBadRequest(ctx, "Invalid case data", []FieldError{
				{Field: "docketedDate", Rule: "date", Message: "must be a parseable date"},
			})
		default:
			RespondInternal(ctx, "Could not update case")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// DeleteCase removes a record; deleting an id that does not exist still
// succeeds with 204.
func (h *CasesHandler) DeleteCase(ctx *gin.Context) {
	id, ok := caseIDParam(ctx)

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		RespondInternal(ctx, "Could not delete case")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func caseIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "Invalid case id", nil)
		return 0, false
	}

	return id, true
}
