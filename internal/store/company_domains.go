package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// CompanyDomain is the cached online-presence lookup for one company.
// An entry with an empty Domain records a miss: the company was searched
// and nothing usable came back. FetchedAt is zero only when no row exists.
type CompanyDomain struct {
	Domain    string
	SiteTitle string
	FetchedAt time.Time
}

// GetCompanyDomain returns the cached entry, or zero values if missing.
func GetCompanyDomain(ctx context.Context, db *sql.DB, company string) (CompanyDomain, error) {
	company = normalizeCompanyKey(company)
	if company == "" {
		return CompanyDomain{}, nil
	}

	var cd CompanyDomain
	var fetched string
	err := db.QueryRowContext(ctx,
		`SELECT domain, site_title, fetched_at FROM company_domains WHERE company = ? LIMIT 1;`,
		company,
	).Scan(&cd.Domain, &cd.SiteTitle, &fetched)

	if err == sql.ErrNoRows {
		return CompanyDomain{}, nil
	}
	if err != nil {
		return CompanyDomain{}, err
	}
	cd.Domain = strings.TrimSpace(cd.Domain)
	cd.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
	return cd, nil
}

// UpsertCompanyDomain writes a lookup result, including misses (empty
// domain), so the researcher can tell "never looked up" from "found
// nothing recently".
func UpsertCompanyDomain(ctx context.Context, db *sql.DB, company string, cd CompanyDomain) error {
	company = normalizeCompanyKey(company)
	cd.Domain = strings.ToLower(strings.TrimSpace(cd.Domain))

	if company == "" {
		return nil
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO company_domains(company, domain, site_title, fetched_at)
VALUES(?,?,?,?)
ON CONFLICT(company) DO UPDATE SET
  domain = excluded.domain,
  site_title = excluded.site_title,
  fetched_at = excluded.fetched_at;
`, company, cd.Domain, cd.SiteTitle, time.Now().UTC().Format(time.RFC3339))

	return err
}

func normalizeCompanyKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)
	return s
}
