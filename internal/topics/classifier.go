// Package topics tags article titles with entries from the controlled vocabulary.
package topics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/ports"
	"NewsPolarity/pkg/batch"
)

// DefaultBatchSize bounds the number of titles sent in one request.
const DefaultBatchSize = 15

// Classifier sends titles to a chat model in fixed-size batches.
type Classifier struct {
	chat      ports.ChatClient
	batchSize int
	logger    *slog.Logger
}

var _ ports.TopicClassifier = (*Classifier)(nil)

// NewClassifier wires a chat client; batchSize <= 0 falls back to DefaultBatchSize.
func NewClassifier(chat ports.ChatClient, batchSize int, logger *slog.Logger) *Classifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Classifier{chat: chat, batchSize: batchSize, logger: logger}
}

// Classify returns an entry for every input title. A batch whose request or reply fails
// maps each of its titles to an empty topic list; only invalid input is an error.
func (c *Classifier) Classify(ctx context.Context, titles, vocabulary []string) (map[string][]string, error) {
	if len(titles) == 0 {
		return nil, &domain.ValidationError{Stage: "topics", Field: "title", Index: -1, Reason: "no titles to classify"}
	}
	for i, title := range titles {
		if strings.TrimSpace(title) == "" {
			return nil, &domain.ValidationError{Stage: "topics", Field: "title", Index: i, Reason: "empty title"}
		}
	}

	allowed := canonicalVocabulary(vocabulary)
	instruction := BuildInstruction(vocabulary)
	result := make(map[string][]string, len(titles))

	for n, group := range batch.Chunk(titles, c.batchSize) {
		inGroup := make(map[string]bool, len(group))
		for _, title := range group {
			result[title] = []string{}
			inGroup[title] = true
		}

		if c.chat == nil {
			continue
		}

		reply, err := c.chat.Complete(ctx, instruction, strings.Join(group, "\n"))
		if err != nil {
			c.warn("classification request failed", "batch", n, "titles", len(group), "error", err)
			continue
		}

		assignments, err := ParseReply(reply)
		if err != nil {
			c.warn("classification reply unparseable", "batch", n, "titles", len(group), "error", err)
			continue
		}

		for _, a := range assignments {
			if !inGroup[a.Title] {
				continue
			}
			result[a.Title] = restrict(a.Topics, allowed)
		}
	}

	return result, nil
}

// BuildInstruction renders the system message that embeds the whole vocabulary.
func BuildInstruction(vocabulary []string) string {
	return fmt.Sprintf(
		"You label news headlines. Each line of the user message is one headline. "+
			"Reply with a JSON list containing one object per headline with the keys "+
			"\"title\" (the headline, unchanged) and \"topics\" (a list of topics that apply, "+
			"or an empty list if none apply). Only use these topics: %s",
		strings.Join(vocabulary, ", "),
	)
}

// Assign attaches classification results to scored articles. With dropUnclassified set,
// articles left without topics are discarded.
func Assign(scored []domain.ScoredArticle, result map[string][]string, dropUnclassified bool) []domain.ClassifiedArticle {
	out := make([]domain.ClassifiedArticle, 0, len(scored))
	for _, s := range scored {
		topics := result[s.Article.Title]
		if len(topics) == 0 && dropUnclassified {
			continue
		}
		if topics == nil {
			topics = []string{}
		}
		out = append(out, domain.ClassifiedArticle{ScoredArticle: s, Topics: topics})
	}
	return out
}

func canonicalVocabulary(vocabulary []string) map[string]string {
	allowed := make(map[string]string, len(vocabulary))
	for _, v := range vocabulary {
		allowed[strings.ToLower(strings.TrimSpace(v))] = v
	}
	return allowed
}

// restrict maps reply topics onto vocabulary spelling and drops anything outside it.
func restrict(topics []string, allowed map[string]string) []string {
	out := make([]string, 0, len(topics))
	seen := map[string]bool{}
	for _, t := range topics {
		name, ok := allowed[strings.ToLower(strings.TrimSpace(t))]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func (c *Classifier) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
