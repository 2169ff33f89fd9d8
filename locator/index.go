package locator

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ---------------------------------------------------------------------------
// Persistent symbol index (sqlite)
// ---------------------------------------------------------------------------

const indexSchema = `
CREATE TABLE IF NOT EXISTS symbols (
	name      TEXT PRIMARY KEY,
	file      TEXT NOT NULL,
	namespace TEXT NOT NULL DEFAULT '',
	kind      TEXT NOT NULL DEFAULT 'class'
);
`

// loadIndex reads all symbols from the sqlite index at path.
func loadIndex(path string) ([]Symbol, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("locator: open index %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(indexSchema); err != nil {
		return nil, fmt.Errorf("locator: init index schema: %w", err)
	}

	rows, err := db.Query(`SELECT name, file, namespace, kind FROM symbols`)
	if err != nil {
		return nil, fmt.Errorf("locator: query index: %w", err)
	}
	defer rows.Close()

	var syms []Symbol
	for rows.Next() {
		var s Symbol
		if err := rows.Scan(&s.Name, &s.File, &s.Namespace, &s.Kind); err != nil {
			return nil, fmt.Errorf("locator: scan index row: %w", err)
		}
		syms = append(syms, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locator: read index: %w", err)
	}
	return syms, nil
}

// storeIndex writes symbols into the sqlite index at path. Existing rows for
// the same name are replaced so the index reflects the latest scan.
func storeIndex(path string, syms []Symbol) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("locator: open index %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(indexSchema); err != nil {
		return fmt.Errorf("locator: init index schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("locator: begin index tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO symbols (name, file, namespace, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("locator: prepare index insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range syms {
		if _, err := stmt.Exec(s.Name, s.File, s.Namespace, s.Kind); err != nil {
			tx.Rollback()
			return fmt.Errorf("locator: insert symbol %s: %w", s.Name, err)
		}
	}
	return tx.Commit()
}
