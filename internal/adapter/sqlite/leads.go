package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time check: LeadRepository implements domain.LeadRepository.
var _ domain.LeadRepository = (*LeadRepository)(nil)

// LeadRepository implements domain.LeadRepository using SQLite.
type LeadRepository struct {
	db *sql.DB
}

const leadColumns = `id, status, contact_name, contact_email, contact_phone, company, notes, tenant_id, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l domain.Lead) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, string(l.Status), l.ContactName, l.ContactEmail, l.ContactPhone,
		l.Company, l.Notes, nullString(l.TenantID),
		formatTime(l.CreatedAt), formatTime(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	lead, err := scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []any

	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += ` LIMIT -1`
		}
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	return r.queryLeads(ctx, query, args...)
}

// ListConverted returns every lead currently flagged converted.
func (r *LeadRepository) ListConverted(ctx context.Context) ([]domain.Lead, error) {
	return r.queryLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE status = ? ORDER BY id`,
		string(domain.LeadConverted),
	)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to domain.LeadStatus, note string) (domain.Lead, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := formatTime(time.Now())

	result, err := tx.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), now, id, string(from),
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("updating lead status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Lead{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM leads WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound
		}
		if err != nil {
			return domain.Lead{}, fmt.Errorf("checking lead: %w", err)
		}
		return domain.Lead{}, domain.ErrStatusConflict
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lead_status_history (lead_id, from_status, to_status, note, changed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, string(from), string(to), note, now,
	); err != nil {
		return domain.Lead{}, fmt.Errorf("recording status history: %w", err)
	}

	lead, err := scanLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if err != nil {
		return domain.Lead{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Lead{}, fmt.Errorf("committing status update: %w", err)
	}

	return lead, nil
}

func (r *LeadRepository) SetTenant(ctx context.Context, leadID, tenantID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE leads SET tenant_id = ?, updated_at = ? WHERE id = ?`,
		nullString(tenantID), formatTime(time.Now()), leadID,
	)
	if err != nil {
		return fmt.Errorf("linking tenant to lead: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) History(ctx context.Context, leadID string) ([]domain.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lead_id, from_status, to_status, note, changed_at
		 FROM lead_status_history WHERE lead_id = ? ORDER BY id`, leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusChange
	for rows.Next() {
		var c domain.StatusChange
		var from, to, changedAt string
		if err := rows.Scan(&c.LeadID, &from, &to, &c.Note, &changedAt); err != nil {
			return nil, fmt.Errorf("scanning status history row: %w", err)
		}
		c.From = domain.LeadStatus(from)
		c.To = domain.LeadStatus(to)
		c.ChangedAt = parseTime(changedAt)
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *LeadRepository) queryLeads(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}

	return leads, rows.Err()
}

// scanLead scans a single row into a domain.Lead. sql.ErrNoRows is passed
// through unwrapped so callers can map it.
func scanLead(row scanner) (domain.Lead, error) {
	var l domain.Lead
	var status, createdAt, updatedAt string
	var tenantID sql.NullString

	err := row.Scan(&l.ID, &status, &l.ContactName, &l.ContactEmail, &l.ContactPhone,
		&l.Company, &l.Notes, &tenantID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lead{}, err
		}
		return domain.Lead{}, fmt.Errorf("scanning lead: %w", err)
	}

	l.Status = domain.LeadStatus(status)
	l.TenantID = tenantID.String
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)

	return l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
