// Package presence researches a company's online footprint: finds its
// website domain via search and pulls the homepage title as an extra
// industry signal. Results are cached in the company_domains table; hits
// are kept for good, misses are retried after negativeTTL.
package presence

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"starz-engine/internal/store"
)

// negativeTTL is how long a cached miss suppresses re-searching a company.
const negativeTTL = 7 * 24 * time.Hour

// Directories, aggregators and lead platforms are never a company's own
// site; skip them when picking a domain from search results.
var domainBlocklist = []string{
	"yelp.com",
	"facebook.com",
	"instagram.com",
	"linkedin.com",
	"yellowpages.com",
	"bbb.org",
	"angi.com",
	"homeadvisor.com",
	"thumbtack.com",
	"houzz.com",
	"bark.com",
	"nextdoor.com",
	"tripadvisor.com",
	"mapquest.com",
	"groupon.com",
	"google.com",
	"wikipedia.org",
}

type Report struct {
	Domain    string `json:"domain"`
	SiteTitle string `json:"site_title"`
}

type Researcher struct {
	DB      *sql.DB
	Limiter *HostLimiter
	Client  *http.Client
}

func NewResearcher(db *sql.DB) *Researcher {
	return &Researcher{
		DB:      db,
		Limiter: NewHostLimiter(1.0, 2),
		Client:  &http.Client{Timeout: 12 * time.Second},
	}
}

// Research returns the cached report for company, or performs the search +
// homepage fetch and caches what it finds. An empty report with nil error
// means the company simply couldn't be resolved.
func (r *Researcher) Research(ctx context.Context, company string) (Report, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return Report{}, nil
	}

	cd, err := store.GetCompanyDomain(ctx, r.DB, company)
	if err != nil {
		return Report{}, err
	}
	if cd.Domain != "" {
		return Report{Domain: cd.Domain, SiteTitle: cd.SiteTitle}, nil
	}
	if freshMiss(cd, time.Now()) {
		return Report{}, nil
	}

	dom, err := r.findCompanyDomain(ctx, company)
	if err != nil {
		return Report{}, err
	}
	if dom == "" {
		// Cache the miss so the next polls skip the search until the TTL
		// lapses.
		if err := store.UpsertCompanyDomain(ctx, r.DB, company, store.CompanyDomain{}); err != nil {
			return Report{}, err
		}
		return Report{}, nil
	}

	rep := Report{Domain: dom}
	rep.SiteTitle = r.fetchSiteTitle(ctx, dom)

	if err := store.UpsertCompanyDomain(ctx, r.DB, company, store.CompanyDomain{
		Domain:    rep.Domain,
		SiteTitle: rep.SiteTitle,
	}); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// findCompanyDomain scrapes DuckDuckGo's HTML results for the first
// non-directory domain. Search failures are soft; they return "".
func (r *Researcher) findCompanyDomain(ctx context.Context, company string) (string, error) {
	q := sanitizeCompanyForSearch(company)
	query := fmt.Sprintf("%s official website", q)

	u := "https://duckduckgo.com/html/?q=" + url.QueryEscape(query)
	if err := r.Limiter.WaitURL(ctx, u); err != nil {
		return "", err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil
	}

	var best string
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}

		target := decodeDDGRedirect(href)
		host := hostFromURL(target)
		if host == "" {
			return true
		}

		host = strings.ToLower(strings.TrimPrefix(host, "www."))
		if isBlockedDomain(host) {
			return true
		}

		best = host
		return false // stop at first good domain
	})

	return best, nil
}

// fetchSiteTitle pulls <title> and the meta description from the homepage.
// Best-effort: any failure returns "".
func (r *Researcher) fetchSiteTitle(ctx context.Context, domain string) string {
	u := "https://" + domain + "/"
	if err := r.Limiter.WaitURL(ctx, u); err != nil {
		return ""
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.Client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	title := doc.Find("title").First().Text()
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")

	out := strings.Join(strings.Fields(title+" "+desc), " ")
	return truncateRunes(out, 300)
}

// freshMiss reports whether cd is a cached "found nothing" entry still
// inside its TTL.
func freshMiss(cd store.CompanyDomain, now time.Time) bool {
	return cd.Domain == "" && !cd.FetchedAt.IsZero() && now.Sub(cd.FetchedAt) < negativeTTL
}

// truncateRunes caps s at max bytes without splitting a UTF-8 rune.
func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func decodeDDGRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	// DDG sometimes uses /l/?uddg=<urlencoded>
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if dec, err := url.QueryUnescape(uddg); err == nil && dec != "" {
			return dec
		}
	}
	return href
}

func hostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

func isBlockedDomain(host string) bool {
	for _, b := range domainBlocklist {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

func sanitizeCompanyForSearch(s string) string {
	s = strings.TrimSpace(s)
	repls := []string{
		", Inc.", "", " Inc.", "", " Inc", "",
		", LLC", "", " LLC", "",
		", Ltd.", "", " Ltd.", "", " Ltd", "",
	}
	r := strings.NewReplacer(repls...)
	s = r.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
