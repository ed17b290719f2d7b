package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsPolarity/internal/config"
	"NewsPolarity/internal/domain"
	"NewsPolarity/pkg/batch"
)

const (
	insertChunk  = 500
	lookupChunk  = 1000
	dateOnlyForm = "2006-01-02"
)

// KnownTitles reports which of the given titles already exist in the article table.
func (r *Repository) KnownTitles(ctx context.Context, titles []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(titles) == 0 {
		return result, nil
	}

	for _, chunk := range batch.Chunk(titles, lookupChunk) {
		var cond sq.Sqlizer = sq.Eq{"article_title": chunk}
		if r.dialect == config.DialectPostgres {
			cond = sq.Expr("article_title = ANY(?)", pq.StringArray(chunk))
		}

		query, args, err := r.builder.Select("DISTINCT article_title").From("article").Where(cond).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build known titles: %w", err)
		}

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query known titles: %w", err)
		}
		if err := scanRows(rows, func(rows *sql.Rows) error {
			var title string
			if err := rows.Scan(&title); err != nil {
				return err
			}
			result[title] = true
			return nil
		}); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// SourceIDs maps every source name to its key.
func (r *Repository) SourceIDs(ctx context.Context) (map[string]int64, error) {
	return r.nameIDs(ctx, "source", "source_id", "source_name")
}

// TopicIDs maps every topic name to its key.
func (r *Repository) TopicIDs(ctx context.Context) (map[string]int64, error) {
	return r.nameIDs(ctx, "topic", "topic_id", "topic_name")
}

// TopicNames returns the controlled vocabulary in insertion order.
func (r *Repository) TopicNames(ctx context.Context) ([]string, error) {
	query, args, err := r.builder.Select("topic_name").From("topic").OrderBy("topic_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build topic names: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topic names: %w", err)
	}

	var names []string
	if err := scanRows(rows, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	}); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Repository) nameIDs(ctx context.Context, table, idCol, nameCol string) (map[string]int64, error) {
	query, args, err := r.builder.Select(idCol, nameCol).From(table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s lookup: %w", table, err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	ids := make(map[string]int64)
	if err := scanRows(rows, func(rows *sql.Rows) error {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		ids[name] = id
		return nil
	}); err != nil {
		return nil, err
	}
	return ids, nil
}

// Persist stores articles and then their topic links in two separate transactions.
// Articles that collide on (title, source, date) are skipped and so are their links.
// Topic names absent from the topic table are ignored. Every article needs a publish date.
func (r *Repository) Persist(ctx context.Context, articles []domain.ClassifiedArticle) ([]domain.PersistedArticle, error) {
	if len(articles) == 0 {
		return nil, nil
	}
	for i, a := range articles {
		if a.Article.Published.IsZero() {
			return nil, &domain.ValidationError{Stage: "persist", Field: "published", Index: i, Reason: "missing publish date"}
		}
	}

	var persisted []domain.PersistedArticle
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range batch.Chunk(articles, insertChunk) {
			insert := r.builder.Insert("article").Columns(
				"article_title", "article_content", "title_polarity_score",
				"content_polarity_score", "source_id", "date_published", "article_url",
			)
			for _, a := range chunk {
				insert = insert.Values(
					a.Article.Title,
					a.Article.Content,
					a.TitleScore,
					a.ContentScore,
					a.SourceID,
					publishedDate(a),
					nullable(a.Article.URL),
				)
			}
			query, args, err := insert.
				Suffix("ON CONFLICT (article_title, source_id, date_published) DO NOTHING RETURNING article_id, article_title").
				ToSql()
			if err != nil {
				return fmt.Errorf("build article insert: %w", err)
			}

			rows, err := tx.QueryContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("insert articles: %w", err)
			}
			if err := scanRows(rows, func(rows *sql.Rows) error {
				var p domain.PersistedArticle
				if err := rows.Scan(&p.ID, &p.Title); err != nil {
					return err
				}
				persisted = append(persisted, p)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.persistAssignments(ctx, articles, persisted); err != nil {
		return persisted, err
	}
	return persisted, nil
}

type assignment struct {
	topicID   int64
	articleID int64
}

func (r *Repository) persistAssignments(ctx context.Context, articles []domain.ClassifiedArticle, persisted []domain.PersistedArticle) error {
	if len(persisted) == 0 {
		return nil
	}

	topicIDs, err := r.TopicIDs(ctx)
	if err != nil {
		return err
	}

	articleIDs := make(map[string]int64, len(persisted))
	for _, p := range persisted {
		articleIDs[p.Title] = p.ID
	}

	var links []assignment
	for _, a := range articles {
		articleID, ok := articleIDs[a.Article.Title]
		if !ok {
			continue
		}
		for _, topic := range a.Topics {
			if topicID, ok := topicIDs[topic]; ok {
				links = append(links, assignment{topicID: topicID, articleID: articleID})
			}
		}
	}
	if len(links) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range batch.Chunk(links, insertChunk) {
			insert := r.builder.Insert("article_topic_assignment").Columns("topic_id", "article_id")
			for _, l := range chunk {
				insert = insert.Values(l.topicID, l.articleID)
			}
			query, args, err := insert.Suffix("ON CONFLICT (topic_id, article_id) DO NOTHING").ToSql()
			if err != nil {
				return fmt.Errorf("build assignment insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert assignments: %w", err)
			}
		}
		return nil
	})
}

func publishedDate(a domain.ClassifiedArticle) string {
	return a.Article.Published.UTC().Format(dateOnlyForm)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
