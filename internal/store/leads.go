package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"starz-engine/internal/domain"
)

// Lead is the stored shape plus what the UI needs inline: the heat score
// (top recommendation confidence at intake time) and the fired rule ids.
type Lead struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Company   string   `json:"company"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Notes     string   `json:"notes"`
	Source    string   `json:"source"`
	Budget    int      `json:"budget"`
	Score     int      `json:"score"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
	Domain    string   `json:"domain"`
}

type ListLeadsOpts struct {
	Sort   string // score | date | company | source
	Window string // 24h | 7d | all
	Limit  int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS leads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  budget INTEGER NOT NULL DEFAULT 0,
  score INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL,
  source_id TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS company_domains (
  company TEXT PRIMARY KEY,
  domain TEXT NOT NULL,
  site_title TEXT NOT NULL DEFAULT '',
  fetched_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_leads_created_at
ON leads(created_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_source_id
ON leads(source_id)
WHERE source_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

type LeadInsert struct {
	Lead       domain.Lead
	Score      int
	Tags       []string
	ReceivedAt time.Time
}

// InsertLeadIfNew inserts unless the source_id is already present. Leads
// without a source_id always insert (manual captures have no dedupe key).
func InsertLeadIfNew(ctx context.Context, db *sql.DB, in LeadInsert) (id int64, added bool, err error) {
	tagsB, _ := json.Marshal(in.Tags)
	if in.Tags == nil {
		tagsB = []byte("[]")
	}

	created := in.Lead.CreatedAt
	if created.IsZero() {
		created = in.ReceivedAt
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO leads (name, company, email, phone, notes, source, budget, score, tags, created_at, source_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		in.Lead.Name, in.Lead.Company, in.Lead.Email, in.Lead.Phone, in.Lead.Notes,
		in.Lead.Source, in.Lead.Budget, in.Score, string(tagsB),
		created.UTC().Format(time.RFC3339), in.Lead.SourceID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert lead: %w", err)
	}

	var changes int
	if err := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return 0, false, err
	}
	if changes == 0 {
		return 0, false, nil
	}
	id, _ = res.LastInsertId()
	return id, true, nil
}

func ListLeads(ctx context.Context, db *sql.DB, opts ListLeadsOpts) ([]Lead, error) {
	if opts.Sort == "" {
		opts.Sort = "score"
	}
	if opts.Window == "" {
		opts.Window = "7d"
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol, order := "score", "desc"
	switch opts.Sort {
	case "date":
		sortCol, order = "created_at", "desc"
	case "company":
		sortCol, order = "company", "asc"
	case "source":
		sortCol, order = "source", "asc"
	}

	where := ""
	switch opts.Window {
	case "24h":
		where = "WHERE l.created_at >= datetime('now','-24 hours')"
	case "all":
	default:
		where = "WHERE l.created_at >= datetime('now','-7 days')"
	}

	query := fmt.Sprintf(`
SELECT l.id, l.name, l.company, l.email, l.phone, l.notes, l.source, l.budget,
       l.score, l.tags, l.created_at,
       COALESCE(d.domain, '')
FROM leads l
LEFT JOIN company_domains d ON d.company = lower(trim(l.company))
%s
ORDER BY l.%s %s
LIMIT ?;
`, where, sortCol, order)

	rows, err := db.QueryContext(ctx, query, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		var tagsJSON string
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.Notes,
			&l.Source, &l.Budget, &l.Score, &tagsJSON, &l.CreatedAt, &l.Domain,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &l.Tags)
		out = append(out, l)
	}
	return out, rows.Err()
}

func GetLead(ctx context.Context, db *sql.DB, id int64) (domain.Lead, error) {
	var l domain.Lead
	var created string
	err := db.QueryRowContext(ctx, `
SELECT id, name, company, email, phone, notes, source, budget, created_at, source_id
FROM leads WHERE id = ? LIMIT 1;`, id).Scan(
		&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.Notes,
		&l.Source, &l.Budget, &created, &l.SourceID,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return l, nil
}

func DeleteLead(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?;`, id)
	return err
}

// CleanupOldLeads drops anything older than three months; the CRM of record
// keeps the long tail, this store only backs the live views.
func CleanupOldLeads(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM leads
WHERE created_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old leads: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
