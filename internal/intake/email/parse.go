package email

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"starz-engine/internal/domain"
	"starz-engine/internal/intake/util"
)

var (
	reTags        = regexp.MustCompile(`(?is)<[^>]+>`)
	reBlockBreaks = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li)[^>]*>`)
)

// Lead platforms that mail us notifications, keyed by sender domain.
var notifierSources = map[string]string{
	"bark.com":      "bark",
	"thumbtack.com": "thumbtack",
	"angi.com":      "angi",
	"houzz.com":     "houzz",
	"yelp.com":      "yelp",
}

// Labels a notifier email uses for each lead field, checked in order.
var fieldLabels = map[string][]string{
	"name":    {"name", "customer", "customer name", "contact"},
	"company": {"company", "business", "business name"},
	"phone":   {"phone", "phone number", "telephone", "mobile"},
	"email":   {"email", "email address", "e-mail"},
	"budget":  {"budget", "monthly budget", "spend"},
	"notes":   {"notes", "message", "details", "project", "service needed", "looking for"},
}

// ParseLeadNotification extracts a lead from one notifier email. Returns
// false when the message doesn't look like a lead at all.
func ParseLeadNotification(from, subject, body string, received time.Time) (domain.Lead, bool) {
	fields := leadFields(body)

	lead := domain.Lead{
		Name:      fields["name"],
		Company:   fields["company"],
		Email:     fields["email"],
		Phone:     util.NormalizePhone(fields["phone"]),
		Notes:     fields["notes"],
		Budget:    util.ParseBudget(fields["budget"]),
		Source:    sourceFromAddress(from),
		CreatedAt: received,
	}

	if lead.Name == "" && lead.Company == "" {
		return domain.Lead{}, false
	}
	if lead.Notes == "" {
		lead.Notes = util.CleanText(subject)
	}
	return lead, true
}

// leadFields scans "Label: value" lines; first hit per field wins.
func leadFields(body string) map[string]string {
	out := make(map[string]string, len(fieldLabels))
	for _, line := range strings.Split(body, "\n") {
		i := strings.Index(line, ":")
		if i <= 0 {
			continue
		}
		label := strings.ToLower(util.CleanText(line[:i]))
		value := util.CleanText(line[i+1:])
		if label == "" || value == "" {
			continue
		}
		for field, labels := range fieldLabels {
			if out[field] != "" {
				continue
			}
			for _, l := range labels {
				if label == l {
					out[field] = value
					break
				}
			}
		}
	}
	return out
}

// sourceFromAddress maps the sender domain to a lead source name. Unknown
// domains fall back to their first label ("mail@leadgenco.com" -> "leadgenco").
func sourceFromAddress(from string) string {
	addr := from
	if a, err := mail.ParseAddress(from); err == nil {
		addr = a.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return "email"
	}
	dom := strings.ToLower(strings.Trim(addr[at+1:], "> "))

	for suffix, src := range notifierSources {
		if dom == suffix || strings.HasSuffix(dom, "."+suffix) {
			return src
		}
	}

	if i := strings.IndexByte(dom, '.'); i > 0 {
		return dom[:i]
	}
	if dom != "" {
		return dom
	}
	return "email"
}

// parseRFC822 returns the message id and a plain-text rendering of the body.
func parseRFC822(raw []byte) (messageID, bodyText string) {
	if len(raw) == 0 {
		return "", ""
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		// treat raw as plaintext best-effort
		return "", string(raw)
	}

	messageID = strings.TrimSpace(msg.Header.Get("Message-Id"))
	if messageID == "" {
		messageID = strings.TrimSpace(msg.Header.Get("Message-ID"))
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))

	plain, htmlPart := extractMIMETextParts(msg.Header, bodyRaw)
	if plain == "" && htmlPart != "" {
		plain = htmlToText(htmlPart)
	}
	if plain == "" {
		plain = string(bodyRaw)
	}
	return messageID, plain
}

func extractMIMETextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeTransferEncoding(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 4<<20))
			b = decodeTransferEncoding(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractMIMETextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}

// htmlToText flattens HTML to whitespace-joined text but keeps line breaks
// for block-ish tags so labeled fields stay on their own lines.
func htmlToText(s string) string {
	s = reBlockBreaks.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = reTags.ReplaceAllString(line, " ")
		lines[i] = util.CleanText(html.UnescapeString(line))
	}
	return strings.Join(lines, "\n")
}

func containsAnyCI(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func hashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
