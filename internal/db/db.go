package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ReachPilot/internal/models"
	"ReachPilot/internal/stage"
)

// Store is the Postgres-backed lead store. Leads are keyed by
// lowercased email; every write goes through one merge-upsert
// statement so a partial patch can never leave a half-written record.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, conn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

const leadColumns = `email, name, stage, first_contact_at, last_contact_at,
	 quiz_score, payment_status, notes,
	 assessment_completed, skill_assessment_completed,
	 pending_email_type, pending_email_time`

// GetLead returns the lead for an address, or nil when none exists.
// Lookup is case-insensitive.
func (s *Store) GetLead(ctx context.Context, email string) (*models.Lead, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+leadColumns+`
		 FROM leads
		 WHERE email = lower($1)`,
		email,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// UpsertLead applies a partial patch with merge semantics: nil fields
// keep their stored value, first_contact_at is written once, the
// boolean flags are OR'd with the stored value, AppendNote appends one
// timestamped line, and the two pending columns are always written
// together or not at all.
func (s *Store) UpsertLead(ctx context.Context, patch models.LeadPatch) (*models.Lead, error) {
	var stagePtr *string
	if patch.Stage != nil {
		v := string(*patch.Stage)
		stagePtr = &v
	}

	var notePtr *string
	if patch.AppendNote != "" {
		line := fmt.Sprintf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), patch.AppendNote)
		notePtr = &line
	}

	touchPending := patch.SetPending != nil || patch.ClearPending
	var pendingType *string
	var pendingTime *time.Time
	if patch.SetPending != nil {
		v := string(patch.SetPending.Type)
		t := patch.SetPending.At
		pendingType = &v
		pendingTime = &t
	}

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (lower($1), COALESCE($2, ''), COALESCE($3, 'JOBS_LIST_SENT'),
		         now(), now(), $4, COALESCE($5, 'unpaid'), COALESCE($6, ''),
		         COALESCE($7, false), COALESCE($8, false), $9, $10)
		 ON CONFLICT (email) DO UPDATE SET
		     name                       = COALESCE($2, leads.name),
		     stage                      = COALESCE($3, leads.stage),
		     last_contact_at            = now(),
		     quiz_score                 = COALESCE($4, leads.quiz_score),
		     payment_status             = COALESCE($5, leads.payment_status),
		     notes                      = leads.notes || COALESCE($6, ''),
		     assessment_completed       = leads.assessment_completed OR COALESCE($7, false),
		     skill_assessment_completed = leads.skill_assessment_completed OR COALESCE($8, false),
		     pending_email_type         = CASE WHEN $11 THEN $9  ELSE leads.pending_email_type END,
		     pending_email_time         = CASE WHEN $11 THEN $10 ELSE leads.pending_email_time END
		 RETURNING `+leadColumns,
		patch.Email,
		patch.Name,
		stagePtr,
		patch.QuizScore,
		patch.PaymentStatus,
		notePtr,
		patch.AssessmentCompleted,
		patch.SkillAssessmentCompleted,
		pendingType,
		pendingTime,
		touchPending,
	)

	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("upsert lead %s: %w", patch.Email, err)
	}
	return lead, nil
}

// ListPendingDue returns every lead whose scheduled email is due at or
// before now, oldest schedule first.
func (s *Store) ListPendingDue(ctx context.Context, now time.Time) ([]models.Lead, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+leadColumns+`
		 FROM leads
		 WHERE pending_email_time IS NOT NULL
		   AND pending_email_time <= $1
		 ORDER BY pending_email_time ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var (
		lead        models.Lead
		rawStage    string
		pendingType *string
	)

	err := row.Scan(
		&lead.Email,
		&lead.Name,
		&rawStage,
		&lead.FirstContactAt,
		&lead.LastContactAt,
		&lead.QuizScore,
		&lead.PaymentStatus,
		&lead.Notes,
		&lead.AssessmentCompleted,
		&lead.SkillAssessmentCompleted,
		&pendingType,
		&lead.PendingEmailTime,
	)
	if err != nil {
		return nil, err
	}

	// The raw stage string passes through unvalidated: the engine
	// treats unrecognized values as missing records and self-heals.
	lead.Stage = stage.Stage(rawStage)

	if pendingType != nil {
		t := models.PendingEmailType(*pendingType)
		lead.PendingEmailType = &t
	}

	return &lead, nil
}
