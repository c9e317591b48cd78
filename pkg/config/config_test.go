package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Extractor.Mode != "fixed" || cfg.Extractor.BowSize != 10 || cfg.Extractor.WordSize != 4 {
		t.Errorf("unexpected extractor defaults: %+v", cfg.Extractor)
	}
	if !cfg.Extractor.SkipSpaces || !cfg.Extractor.NonUniqueWords {
		t.Errorf("expected skipSpaces and nonUniqueWords to default to true")
	}
	if cfg.Scorer.CaseSensitive {
		t.Error("expected case-insensitive scoring by default")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  readTimeout: 3s
extractor:
  mode: ngram
  bowSize: 25
  ngramMin: 1
  ngramMax: 3
corpus:
  dir: /srv/corpus
  workers: 8
`)
	t.Setenv("LS_SERVER_PORT", "9100")
	t.Setenv("LS_SCORER_CASE_SENSITIVE", "true")
	t.Setenv("LS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected env port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("expected read timeout 3s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Extractor.Mode != "ngram" || cfg.Extractor.NGramMax != 3 || cfg.Extractor.BowSize != 25 {
		t.Errorf("unexpected extractor config: %+v", cfg.Extractor)
	}
	if !cfg.Extractor.SkipSpaces {
		t.Error("expected unset skipSpaces to keep its default")
	}
	if !cfg.Scorer.CaseSensitive {
		t.Error("expected env to enable case-sensitive scoring")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Corpus.Dir != "/srv/corpus" || cfg.Corpus.Workers != 8 {
		t.Errorf("unexpected corpus config: %+v", cfg.Corpus)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "extractor:\n  mode: skipgram\ncorpus:\n  workers: 0\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "extractor.mode") || !strings.Contains(err.Error(), "corpus.workers") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
