package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/textsource"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/postgres"
)

var fixedParams = bow.Params{Mode: bow.ModeFixed, WordSize: 2, BowSize: 10, SkipSpaces: true, NonUniqueWords: true}

func doc(name string, words ...string) Document {
	b := bow.New()
	for _, w := range words {
		b.Add(w, 2)
	}
	return NewDocument(name, fixedParams, b)
}

func names(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

func TestCorpusAddRemoveKeepsOrder(t *testing.T) {
	c := New()
	a, b, d := doc("a.txt", "ab"), doc("b.txt", "cd"), doc("c.txt", "ef")
	for _, x := range []Document{a, b, d} {
		if err := c.Add(x); err != nil {
			t.Fatalf("add %s: %v", x.Name, err)
		}
	}
	if err := c.Add(doc("a.txt")); !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Errorf("expected duplicate name to fail, got %v", err)
	}

	if _, err := c.Remove(b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := names(c.Snapshot()); !reflect.DeepEqual(got, []string{"a.txt", "c.txt"}) {
		t.Errorf("unexpected order %v", got)
	}
	if _, err := c.Remove(b.ID); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := c.Add(doc("b.txt")); err != nil {
		t.Errorf("expected removed name to be reusable, got %v", err)
	}
	if _, ok := c.Get(d.ID); !ok {
		t.Error("expected c.txt to be found by id")
	}
}

func TestCorpusReplace(t *testing.T) {
	c := New()
	if err := c.Replace([]Document{doc("x"), doc("x")}); err == nil {
		t.Fatal("expected duplicate names to be rejected")
	}
	if err := c.Replace([]Document{doc("x"), doc("y")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 documents, got %d", c.Len())
	}
	if err := c.Add(doc("y")); !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Errorf("expected name index rebuilt by Replace, got %v", err)
	}
}

func TestBoWsFollowsDocumentOrder(t *testing.T) {
	docs := []Document{doc("a", "ab"), doc("b", "cd")}
	bows := BoWs(docs)
	if len(bows) != 2 || !bows[1].Has("cd") {
		t.Errorf("unexpected bags %v", bows)
	}
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestBuildFromDir(t *testing.T) {
	files := map[string]string{
		"empty.txt": "",
		"skip.md":   "abab",
	}
	for i := 0; i < 12; i++ {
		files["doc"+strconv.Itoa(10+i)+".txt"] = "xyxy\nxyxy " + strconv.Itoa(i)
	}
	dir := writeCorpus(t, files)

	builder := NewBuilder(bow.NewExtractor(textsource.New(0)), 4)
	docs, err := builder.BuildFromDir(context.Background(), dir, fixedParams, ".txt")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(docs) != 12 {
		t.Fatalf("expected 12 documents, got %d: %v", len(docs), names(docs))
	}
	for i, d := range docs {
		if want := "doc" + strconv.Itoa(10+i) + ".txt"; d.Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, d.Name)
		}
		if n, _ := d.BoW.Get("xy"); n != 4 {
			t.Errorf("%s: expected xy counted 4 times, got %d", d.Name, n)
		}
	}
}

func TestBuildFromDirCancelled(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": "abab"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	builder := NewBuilder(bow.NewExtractor(textsource.New(0)), 2)
	if _, err := builder.BuildFromDir(ctx, dir, fixedParams); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildFromDirMissing(t *testing.T) {
	builder := NewBuilder(bow.NewExtractor(textsource.New(0)), 2)
	if _, err := builder.BuildFromDir(context.Background(), filepath.Join(t.TempDir(), "nope"), fixedParams); err == nil {
		t.Error("expected error for missing directory")
	}
}

// TestStoreRoundTrip needs a PostgreSQL instance and skips without one.
func TestStoreRoundTrip(t *testing.T) {
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("skipping: TEST_POSTGRES_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cfg := config.Default().Postgres
	cfg.Host = host
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	d := NewDocument("roundtrip-"+strconv.FormatInt(time.Now().UnixNano(), 10), fixedParams,
		bow.FromEntries(bow.Entry{Word: "zz", Count: 3}, bow.Entry{Word: "aa", Count: 3}))
	if err := store.Save(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Cleanup(func() { store.Delete(context.Background(), d.ID) })
	if err := store.Save(ctx, d); !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Errorf("expected duplicate save to fail with ErrDocumentExists, got %v", err)
	}

	docs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, got := range docs {
		if got.ID == d.ID {
			if !got.BoW.Equal(d.BoW) {
				t.Errorf("expected %v, got %v", d.BoW.Entries(), got.BoW.Entries())
			}
			return
		}
	}
	t.Error("saved document not listed")
}
