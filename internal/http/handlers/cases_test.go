package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lostboitest/casemanage/internal/domain/courtcase"
	"github.com/lostboitest/casemanage/internal/http/handlers"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.CasesStore interface

type fakeCasesRepo struct {
	getAllFn      func(ctx context.Context) ([]courtcase.Case, error)
	getByIDFn     func(ctx context.Context, id int64) (courtcase.Case, error)
	getByNumberFn func(ctx context.Context, caseNumber string) (courtcase.Case, error)
	createFn      func(ctx context.Context, c courtcase.Case) (courtcase.Case, error)
	updateFn      func(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (f *fakeCasesRepo) GetAll(ctx context.Context) ([]courtcase.Case, error) {
	if f.getAllFn != nil {
		return f.getAllFn(ctx)
	}

	return []courtcase.Case{}, nil
}

func (f *fakeCasesRepo) GetByID(ctx context.Context, id int64) (courtcase.Case, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return courtcase.Case{}, courtcase.ErrNotFound
}

func (f *fakeCasesRepo) GetByNumber(ctx context.Context, caseNumber string) (courtcase.Case, error) {
	if f.getByNumberFn != nil {
		return f.getByNumberFn(ctx, caseNumber)
	}

	return courtcase.Case{}, courtcase.ErrNotFound
}

func (f *fakeCasesRepo) Create(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}

	return courtcase.Case{}, nil
}

func (f *fakeCasesRepo) Update(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return courtcase.Case{}, nil
}

func (f *fakeCasesRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func sampleCase(id int64, caseNumber string) courtcase.Case {
	now := time.Now().UTC()

	return courtcase.Case{
		ID:               id,
		CaseNumber:       caseNumber,
		Title:            "State v. Doe",
		Description:      "Criminal appeal",
		Status:           "open",
		Petitioner:       "State",
		Respondent:       "Doe",
		DocketedDate:     now.Add(-24 * time.Hour),
		CourtProceedings: []courtcase.Proceeding{},
		PartiesInvolved:  []courtcase.Party{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

const validCreateBody = `{
	"caseNumber": "24-001",
	"title": "State v. Doe",
	"description": "Criminal appeal",
	"status": "open",
	"petitioner": "State",
	"respondent": "Doe",
	"docketedDate": "2024-01-01",
	"courtProceedings": [],
	"partiesInvolved": []
}`

func TestSearchHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeCasesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/cases/search?caseNumber=24-001",
			repoSetup: func(f *fakeCasesRepo) {
				f.getByNumberFn = func(ctx context.Context, caseNumber string) (courtcase.Case, error) {
					if caseNumber != "24-001" {
						return courtcase.Case{}, courtcase.ErrNotFound
					}

					return sampleCase(1, caseNumber), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_param",
			url:            "/api/cases/search",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/api/cases/search?caseNumber=99-999",
			repoSetup: func(f *fakeCasesRepo) {
				f.getByNumberFn = func(ctx context.Context, caseNumber string) (courtcase.Case, error) {
					return courtcase.Case{}, courtcase.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/api/cases/search?caseNumber=24-001",
			repoSetup: func(f *fakeCasesRepo) {
				f.getByNumberFn = func(ctx context.Context, caseNumber string) (courtcase.Case, error) {
					return courtcase.Case{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeCasesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewCasesHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/api/cases/search", h.Search)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateCaseHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeCasesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: validCreateBody,
			repoSetup: func(f *fakeCasesRepo) {
				f.createFn = func(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
					c.ID = 1
					return c, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error_missing_fields",
			body:           `{"caseNumber": "24-001"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation_error_bad_status",
			body: `{
				"caseNumber": "24-001",
				"title": "T",
				"description": "D",
				"status": "archived",
				"petitioner": "A",
				"respondent": "B",
				"docketedDate": "2024-01-01",
				"courtProceedings": [],
				"partiesInvolved": []
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation_error_bad_date",
			body: `{
				"caseNumber": "24-001",
				"title": "T",
				"description": "D",
				"status": "open",
				"petitioner": "A",
				"respondent": "B",
				"docketedDate": "soon",
				"courtProceedings": [],
				"partiesInvolved": []
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_case_number_precheck",
			body: validCreateBody,
			repoSetup: func(f *fakeCasesRepo) {
				f.getByNumberFn = func(ctx context.Context, caseNumber string) (courtcase.Case, error) {
					return sampleCase(1, caseNumber), nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_case_number_from_repo",
			body: validCreateBody,
			repoSetup: func(f *fakeCasesRepo) {
				f.createFn = func(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
					return courtcase.Case{}, courtcase.ErrDuplicateCaseNumber
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: validCreateBody,
			repoSetup: func(f *fakeCasesRepo) {
				f.createFn = func(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
					return courtcase.Case{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeCasesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewCasesHandler(fakeRepo)
			r := setupRouter(http.MethodPost, "/api/cases", h.CreateCase)

			req := httptest.NewRequest(http.MethodPost, "/api/cases", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var created courtcase.Case

				if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}

				if created.ID == 0 {
					t.Fatalf("expected an assigned id, body=%s", w.Body.String())
				}

				if created.CaseNumber != "24-001" || created.Status != "open" {
					t.Fatalf("fields not echoed back: %+v", created)
				}
			}
		})
	}
}

func TestUpdateCaseHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeCasesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/cases/1",
			body: `{"status": "closed"}`,
			repoSetup: func(f *fakeCasesRepo) {
				f.updateFn = func(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
					if req.Status == nil || *req.Status != "closed" {
						return courtcase.Case{}, errors.New("status not passed through")
					}

					c := sampleCase(id, "24-001")
					c.Status = *req.Status
					return c, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/api/cases/404",
			body: `{"status": "closed"}`,
			repoSetup: func(f *fakeCasesRepo) {
				f.updateFn = func(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
					return courtcase.Case{}, courtcase.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			url:            "/api/cases/1",
			body:           `{"status": "archived"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_date",
			url:  "/api/cases/1",
			body: `{"docketedDate": "soon"}`,
			repoSetup: func(f *fakeCasesRepo) {
				f.updateFn = func(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
					return courtcase.Case{}, courtcase.ErrInvalidDocketDate
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_id",
			url:            "/api/cases/abc",
			body:           `{"status": "closed"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/cases/1",
			body: `{"status": "closed"}`,
			repoSetup: func(f *fakeCasesRepo) {
				f.updateFn = func(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
					return courtcase.Case{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeCasesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewCasesHandler(fakeRepo)
			r := setupRouter(http.MethodPatch, "/api/cases/:id", h.UpdateCase)

			req := httptest.NewRequest(http.MethodPatch, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteCaseHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeCasesRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			url:            "/api/cases/1",
			wantStatusCode: http.StatusNoContent,
		},
		{
			// deletes are idempotent, a missing id is still 204
			name:           "missing_id_still_no_content",
			url:            "/api/cases/404",
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:           "bad_id",
			url:            "/api/cases/abc",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/cases/1",
			repoSetup: func(f *fakeCasesRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeCasesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewCasesHandler(fakeRepo)
			r := setupRouter(http.MethodDelete, "/api/cases/:id", h.DeleteCase)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListCasesHandler(t *testing.T) {
	fakeRepo := &fakeCasesRepo{
		getAllFn: func(ctx context.Context) ([]courtcase.Case, error) {
			return []courtcase.Case{sampleCase(1, "24-001"), sampleCase(2, "24-002")}, nil
		},
	}

	h := handlers.NewCasesHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/api/cases", h.ListCases)

	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var items []courtcase.Case

	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("response is not a case array: %v body=%s", err, w.Body.String())
	}

	if len(items) != 2 {
		t.Fatalf("want 2 cases, got %d", len(items))
	}
}
