package staging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"NewsPolarity/internal/domain"
)

type memObject struct {
	body     []byte
	modified time.Time
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]memObject
	now     time.Time
}

func newFakeS3(now time.Time) *fakeS3 {
	return &fakeS3{objects: map[string]memObject{}, now: now}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = memObject{body: body, modified: f.now}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.body))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		modified := f.objects[k].modified
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), LastModified: &modified})
	}
	return out, nil
}

func (f *fakeS3) put(key string, body string, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = memObject{body: []byte(body), modified: modified}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 10, 15, 9, 30, 5, 0, time.UTC)
	fake := newFakeS3(now)
	store := NewStore(fake, "scraped-articles", nil)
	store.now = func() time.Time { return now }

	rows := []domain.RawArticle{
		{Title: `Quote "inside", comma`, Content: "Line one\nLine two", URL: "https://example.com/a", Published: now.Add(-time.Hour), SourceName: "Democracy Now!"},
		{Title: "No date", Content: "Body", SourceName: "Democracy Now!"},
	}

	key, err := store.PutBatch(context.Background(), "Democracy Now!", rows)
	if err != nil {
		t.Fatalf("PutBatch returned error: %v", err)
	}
	if key != "2024-10-15_09-30-05_democracy_now_article_data.csv" {
		t.Fatalf("unexpected key %q", key)
	}

	keys, err := store.ListRecent(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("unexpected keys %v", keys)
	}

	got, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Title != rows[0].Title || got[0].Content != rows[0].Content || !got[0].Published.Equal(rows[0].Published) {
		t.Fatalf("row mismatch: %+v", got[0])
	}
	if !got[1].Published.IsZero() {
		t.Fatalf("expected zero date, got %v", got[1].Published)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.ListRecent(context.Background(), 24*time.Hour); !errors.Is(err, domain.ErrNothingStaged) {
		t.Fatalf("expected ErrNothingStaged, got %v", err)
	}
}

func TestListRecentFiltersBySuffixAndAge(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	fake := newFakeS3(now)
	fake.put("2024-10-15_11-00-00_fox_news_article_data.csv", "title,content\n", now.Add(-time.Hour))
	fake.put("2024-10-15_10-00-00_democracy_now_article_data.csv", "title,content\n", now.Add(-2*time.Hour))
	fake.put("2024-10-01_10-00-00_fox_news_article_data.csv", "title,content\n", now.Add(-14*24*time.Hour))
	fake.put("notes.txt", "x", now)

	store := NewStore(fake, "bucket", nil)
	store.now = func() time.Time { return now }

	keys, err := store.ListRecent(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	want := []string{
		"2024-10-15_10-00-00_democracy_now_article_data.csv",
		"2024-10-15_11-00-00_fox_news_article_data.csv",
	}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", keys, want)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Fox News":       "fox_news",
		"Democracy Now!": "democracy_now",
		"  ":             "unknown",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeCSVRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := DecodeCSV(strings.NewReader("link,published\nhttps://x,2024-10-01T00:00:00Z\n"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("expected missing title column, got %v", err)
	}

	_, err = DecodeCSV(strings.NewReader("title,content,published\nA,B,yesterday\n"))
	if !errors.As(err, &verr) || verr.Field != "published" || verr.Index != 0 {
		t.Fatalf("expected published validation error, got %v", err)
	}

	rows, err := DecodeCSV(strings.NewReader(""))
	if err != nil || rows != nil {
		t.Fatalf("empty object should decode to nothing, got %v %v", rows, err)
	}
}
