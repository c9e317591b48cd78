// Package migrations embeds the SQL schema of the corpus store.
package migrations

import _ "embed"

// Corpus creates the corpus_documents table. The bag is stored as JSON, not
// JSONB, because JSONB does not keep object key order.
//
//go:embed 001_corpus.sql
var Corpus string
