package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"resume-ats/internal/scoring"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the analysis. The unique constraint on resume_id turns
// concurrent duplicate submissions into ErrAlreadyExists.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO resume_analyses (
    id,
    resume_id,
    score,
    keywords_matched,
    keywords_missing,
    section_scores,
    suggestions,
    strengths,
    provider,
    duration_ms,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	matched, err := marshalList(analysis.KeywordsMatched)
	if err != nil {
		return err
	}
	missing, err := marshalList(analysis.KeywordsMissing)
	if err != nil {
		return err
	}
	sections, err := json.Marshal(analysis.SectionScores)
	if err != nil {
		return fmt.Errorf("marshal section scores: %w", err)
	}
	suggestions, err := marshalList(analysis.Suggestions)
	if err != nil {
		return err
	}
	strengths, err := marshalList(analysis.Strengths)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.ResumeID,
		analysis.Score,
		matched,
		missing,
		sections,
		suggestions,
		strengths,
		analysis.Provider,
		analysis.DurationMs,
		analysis.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByResumeID returns the analysis for a resume.
func (r *PGRepo) GetByResumeID(ctx context.Context, resumeID string) (Analysis, error) {
	const query = `
SELECT id, resume_id, score, keywords_matched, keywords_missing, section_scores, suggestions, strengths, provider, duration_ms, created_at
FROM resume_analyses
WHERE resume_id = $1
LIMIT 1`

	var analysis Analysis
	var matched, missing, sections, suggestions, strengths []byte
	err := r.DB.QueryRowContext(ctx, query, resumeID).Scan(
		&analysis.ID,
		&analysis.ResumeID,
		&analysis.Score,
		&matched,
		&missing,
		&sections,
		&suggestions,
		&strengths,
		&analysis.Provider,
		&analysis.DurationMs,
		&analysis.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}

	if analysis.KeywordsMatched, err = unmarshalList(matched); err != nil {
		return Analysis{}, err
	}
	if analysis.KeywordsMissing, err = unmarshalList(missing); err != nil {
		return Analysis{}, err
	}
	if len(sections) > 0 {
		var scores scoring.SectionScores
		if err := json.Unmarshal(sections, &scores); err != nil {
			return Analysis{}, fmt.Errorf("unmarshal section scores: %w", err)
		}
		analysis.SectionScores = scores
	}
	if analysis.Suggestions, err = unmarshalList(suggestions); err != nil {
		return Analysis{}, err
	}
	if analysis.Strengths, err = unmarshalList(strengths); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

// DeleteByResumeID removes the analysis so a retry can write a fresh one.
func (r *PGRepo) DeleteByResumeID(ctx context.Context, resumeID string) error {
	const query = `DELETE FROM resume_analyses WHERE resume_id = $1`
	_, err := r.DB.ExecContext(ctx, query, resumeID)
	return err
}

func marshalList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	out, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("marshal list: %w", err)
	}
	return out, nil
}

func unmarshalList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
