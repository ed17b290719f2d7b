package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"NewsPolarity/internal/domain"
)

// UpsertSubscriber creates a subscriber or updates names and cadence of an existing email.
func (r *Repository) UpsertSubscriber(ctx context.Context, sub domain.Subscriber) error {
	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if email == "" || !strings.Contains(email, "@") {
		return &domain.ValidationError{Stage: "subscriber", Field: "email", Index: -1, Reason: "not an email address"}
	}

	query, args, err := r.builder.Insert("subscriber").
		Columns("subscriber_email", "subscriber_first_name", "subscriber_surname", "daily", "weekly").
		Values(email, strings.TrimSpace(sub.FirstName), strings.TrimSpace(sub.Surname), sub.Daily, sub.Weekly).
		Suffix(`ON CONFLICT (subscriber_email) DO UPDATE SET
			subscriber_first_name = EXCLUDED.subscriber_first_name,
			subscriber_surname = EXCLUDED.subscriber_surname,
			daily = EXCLUDED.daily,
			weekly = EXCLUDED.weekly`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build subscriber upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// DeleteSubscriber removes a subscriber and reports whether one existed.
func (r *Repository) DeleteSubscriber(ctx context.Context, email string) (bool, error) {
	query, args, err := r.builder.Delete("subscriber").
		Where(sq.Eq{"subscriber_email": strings.ToLower(strings.TrimSpace(email))}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build subscriber delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListSubscribers returns subscribers of a cadence, or all when freq is empty.
func (r *Repository) ListSubscribers(ctx context.Context, freq domain.Frequency) ([]domain.Subscriber, error) {
	sel := r.builder.
		Select("subscriber_email", "subscriber_first_name", "subscriber_surname", "daily", "weekly").
		From("subscriber").
		OrderBy("subscriber_email")

	switch freq {
	case "":
	case domain.FrequencyDaily:
		sel = sel.Where(sq.Eq{"daily": true})
	case domain.FrequencyWeekly:
		sel = sel.Where(sq.Eq{"weekly": true})
	default:
		return nil, &domain.ValidationError{Stage: "subscriber", Field: "frequency", Index: -1, Reason: fmt.Sprintf("unknown frequency %q", freq)}
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subscriber list: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}

	var subs []domain.Subscriber
	if err := scanRows(rows, func(rows *sql.Rows) error {
		var s domain.Subscriber
		if err := rows.Scan(&s.Email, &s.FirstName, &s.Surname, &s.Daily, &s.Weekly); err != nil {
			return err
		}
		subs = append(subs, s)
		return nil
	}); err != nil {
		return nil, err
	}
	return subs, nil
}
