// Package history keeps a SQLite ledger of completed skyarea runs so that
// many injections can be summarised after the fact (P-P plots, area
// distributions).
//
// The schema is created and upgraded from embedded SQL migrations that are
// applied in lexical order and tracked in the schema_migrations table.
package history
