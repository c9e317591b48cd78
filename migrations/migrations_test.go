package migrations

import (
	"strings"
	"testing"
)

func TestCorpusSchema(t *testing.T) {
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS corpus_documents",
		"name       TEXT NOT NULL UNIQUE",
		"bow        JSON NOT NULL",
		"CREATE INDEX IF NOT EXISTS corpus_documents_seq_idx",
	} {
		if !strings.Contains(Corpus, want) {
			t.Errorf("expected corpus schema to contain %q", want)
		}
	}
}
