package staging

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"NewsPolarity/internal/domain"
)

var header = []string{"title", "content", "link", "published", "source_name"}

// EncodeCSV renders rows with a header line. Published dates use RFC3339.
func EncodeCSV(rows []domain.RawArticle) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		published := ""
		if !row.Published.IsZero() {
			published = row.Published.UTC().Format(time.RFC3339)
		}
		if err := w.Write([]string{row.Title, row.Content, row.URL, published, row.SourceName}); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a staged batch. Columns are matched by header name.
func DecodeCSV(r io.Reader) ([]domain.RawArticle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range head {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"title", "content"} {
		if _, ok := cols[required]; !ok {
			return nil, &domain.ValidationError{Stage: "staging", Field: required, Index: -1, Reason: "column missing"}
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []domain.RawArticle
	for line := 0; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		var published time.Time
		if raw := strings.TrimSpace(field(record, "published")); raw != "" {
			published, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, &domain.ValidationError{Stage: "staging", Field: "published", Index: line, Reason: err.Error()}
			}
		}

		rows = append(rows, domain.RawArticle{
			Title:      field(record, "title"),
			Content:    field(record, "content"),
			URL:        field(record, "link"),
			Published:  published,
			SourceName: field(record, "source_name"),
		})
	}
	return rows, nil
}
