package domain

import "time"

// RawArticle is a scraped article as produced by a fetcher and held in staging.
type RawArticle struct {
	Title      string
	Content    string
	URL        string
	Published  time.Time
	SourceName string
}

// Scores is the four-component output of the lexicon analyzer.
type Scores struct {
	Positive float64
	Negative float64
	Neutral  float64
	Compound float64
}

// ScoredArticle carries independent polarity figures for title and content.
type ScoredArticle struct {
	Article      RawArticle
	SourceID     int64
	TitleScore   float64
	ContentScore float64
}

// ClassifiedArticle is a scored article with its assigned topic names.
type ClassifiedArticle struct {
	ScoredArticle
	Topics []string
}

// PersistedArticle pairs a newly stored article with its surrogate key.
type PersistedArticle struct {
	ID    int64
	Title string
}

// Source is a news outlet.
type Source struct {
	ID   int64
	Name string
}

// Topic is an entry of the controlled vocabulary.
type Topic struct {
	ID   int64
	Name string
}

// Frequency selects subscribers by their email cadence.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Subscriber holds the email preferences of a dashboard user.
type Subscriber struct {
	Email     string
	FirstName string
	Surname   string
	Daily     bool
	Weekly    bool
}

// PolarityAverage is one row of the per-topic, per-source aggregate.
type PolarityAverage struct {
	Topic        string
	Source       string
	AvgPolarity  float64
	ArticleCount int
}
