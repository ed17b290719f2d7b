package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NewsPolarity/internal/domain"
)

// DefaultSources are the outlets the scrapers write for.
var DefaultSources = []string{"Fox News", "Democracy Now!"}

// DefaultTopics is the starting controlled vocabulary.
var DefaultTopics = []string{
	"Trump",
	"Kamala",
	"2024 Presidential Election",
	"Climate Change",
	"Natural Disasters",
	"Abortion",
	"Crime and Law Enforcement",
	"Guns",
}

// Seed inserts missing sources and topics. Existing names are left untouched.
func (r *Repository) Seed(ctx context.Context, sources, topics []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.insertNames(ctx, tx, "source", "source_name", sources); err != nil {
			return err
		}
		return r.insertNames(ctx, tx, "topic", "topic_name", topics)
	})
}

func (r *Repository) insertNames(ctx context.Context, tx *sql.Tx, table, column string, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		query, args, err := r.builder.Insert(table).Columns(column).Values(name).
			Suffix("ON CONFLICT (" + column + ") DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build %s seed: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s %q: %w", table, name, err)
		}
	}
	return nil
}

// PolaritySummary averages content polarity per topic and source for articles published on or after since.
func (r *Repository) PolaritySummary(ctx context.Context, since time.Time) ([]domain.PolarityAverage, error) {
	query, args, err := r.builder.
		Select("t.topic_name", "s.source_name", "AVG(a.content_polarity_score)", "COUNT(DISTINCT a.article_id)").
		From("article_topic_assignment ata").
		Join("article a ON ata.article_id = a.article_id").
		Join("topic t ON ata.topic_id = t.topic_id").
		Join("source s ON a.source_id = s.source_id").
		Where("a.date_published >= ?", since.UTC().Format(dateOnlyForm)).
		GroupBy("t.topic_name", "s.source_name").
		OrderBy("t.topic_name", "s.source_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build polarity summary: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query polarity summary: %w", err)
	}

	var out []domain.PolarityAverage
	if err := scanRows(rows, func(rows *sql.Rows) error {
		var avg domain.PolarityAverage
		if err := rows.Scan(&avg.Topic, &avg.Source, &avg.AvgPolarity, &avg.ArticleCount); err != nil {
			return err
		}
		out = append(out, avg)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
