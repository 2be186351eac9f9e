package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lostboitest/casemanage/internal/domain/courtcase"
	"github.com/lostboitest/casemanage/internal/observability"
)

const caseColumns = `id, case_number, title, description, status, petitioner, respondent,
	docketed_date, court_proceedings, parties_involved, created_at, updated_at`

type CasesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCasesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CasesRepo {
	return &CasesRepo{
		pool: pool,
		prom: prom,
	}
}

type caseRowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row caseRowScanner) (courtcase.Case, error) {
	var c courtcase.Case
	var proceedings, parties []byte

	err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.Petitioner,
		&c.Respondent,
		&c.DocketedDate,
		&proceedings,
		&parties,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return courtcase.Case{}, err
	}

	c.CourtProceedings = []courtcase.Proceeding{}

	if len(proceedings) > 0 {
		err = json.Unmarshal(proceedings, &c.CourtProceedings)

		if err != nil {
			return courtcase.Case{}, err
		}
	}

	c.PartiesInvolved = []courtcase.Party{}

	if len(parties) > 0 {
		err = json.Unmarshal(parties, &c.PartiesInvolved)

		if err != nil {
			return courtcase.Case{}, err
		}
	}

	return c, nil
}

func (r *CasesRepo) GetAll(ctx context.Context) ([]courtcase.Case, error) {
	var output []courtcase.Case

	err := withRetry(ctx, r.prom, "cases.get_all", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]courtcase.Case, 0)

		for rows.Next() {
			c, err := scanCase(rows)

			if err != nil {
				return err
			}

			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id int64) (courtcase.Case, error) {
	var c courtcase.Case

	err := withRetry(ctx, r.prom, "cases.get_by_id", func(ctx context.Context) error {
		row := r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)

		got, err := scanCase(row)
		c = got
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return courtcase.Case{}, courtcase.ErrNotFound
		}

		return courtcase.Case{}, err
	}

	return c, nil
}

// GetByNumber is the public search path: exact match only, absence is a
// normal outcome reported as ErrNotFound.
func (r *CasesRepo) GetByNumber(ctx context.Context, caseNumber string) (courtcase.Case, error) {
	var c courtcase.Case

	err := withRetry(ctx, r.prom, "cases.get_by_number", func(ctx context.Context) error {
		row := r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE case_number = $1`, caseNumber)

		got, err := scanCase(row)
		c = got
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return courtcase.Case{}, courtcase.ErrNotFound
		}

		return courtcase.Case{}, err
	}

	return c, nil
}

func (r *CasesRepo) Create(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
	proceedings, err := json.Marshal(c.CourtProceedings)

	if err != nil {
		return courtcase.Case{}, err
	}

	parties, err := json.Marshal(c.PartiesInvolved)

	if err != nil {
		return courtcase.Case{}, err
	}

	var created courtcase.Case

	err = withRetry(ctx, r.prom, "cases.create", func(ctx context.Context) error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO cases (case_number, title, description, status, petitioner, respondent,
				docketed_date, court_proceedings, parties_involved, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+caseColumns,
			c.CaseNumber, c.Title, c.Description, c.Status, c.Petitioner, c.Respondent,
			c.DocketedDate, proceedings, parties, c.CreatedAt, c.UpdatedAt,
		)

		got, err := scanCase(row)
		created = got
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return courtcase.Case{}, courtcase.ErrDuplicateCaseNumber
		}

		return courtcase.Case{}, err
	}

	return created, nil
}

// Update merges only the supplied fields over the stored row and refreshes
// updated_at. A missing id is ErrNotFound.
func (r *CasesRepo) Update(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
	var docketed *time.Time

	if req.DocketedDate != nil {
		parsed, err := courtcase.ParseDocketDate(*req.DocketedDate)

		if err != nil {
			return courtcase.Case{}, err
		}

		docketed = &parsed
	}

	var proceedings, parties []byte

	if req.CourtProceedings != nil {
		payload, err := json.Marshal(req.CourtProceedings)

		if err != nil {
			return courtcase.Case{}, err
		}

		proceedings = payload
	}

	if req.PartiesInvolved != nil {
		payload, err := json.Marshal(req.PartiesInvolved)

		if err != nil {
			return courtcase.Case{}, err
		}

		parties = payload
	}

	var updated courtcase.Case

	// the application clock stamps both create and update, so the two
	// timestamps are comparable regardless of database clock skew
	now := time.Now().UTC()

	err := withRetry(ctx, r.prom, "cases.update", func(ctx context.Context) error {
		row := r.pool.QueryRow(ctx,
			`UPDATE cases
				SET title = COALESCE($2, title),
					description = COALESCE($3, description),
					status = COALESCE($4, status),
					petitioner = COALESCE($5, petitioner),
					respondent = COALESCE($6, respondent),
					docketed_date = COALESCE($7, docketed_date),
					court_proceedings = COALESCE($8, court_proceedings),
					parties_involved = COALESCE($9, parties_involved),
					updated_at = $10
			WHERE id = $1
			RETURNING `+caseColumns,
			id,
			req.Title,
			req.Description,
			req.Status,
			req.Petitioner,
			req.Respondent,
			docketed,
			proceedings,
			parties,
			now,
		)

		got, err := scanCase(row)
		updated = got
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return courtcase.Case{}, courtcase.ErrNotFound
		}

		return courtcase.Case{}, err
	}

	return updated, nil
}

// Delete is idempotent; deleting an absent record is not an error.
func (r *CasesRepo) Delete(ctx context.Context, id int64) error {
	return withRetry(ctx, r.prom, "cases.delete", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)

		return err
	})
}
