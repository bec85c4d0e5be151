package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadNotificationPlainText(t *testing.T) {
	body := `You have a new lead!

Name: Joe Carter
Business: Joe's HVAC Repair
Phone: (555) 123-4567
Email: joe@example.com
Budget: $10,000 - $12,000/month
Looking for: Google Ads for emergency repair calls
`
	received := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	lead, ok := ParseLeadNotification("Bark Team <team@bark.com>", "New lead: HVAC marketing", body, received)
	require.True(t, ok)

	assert.Equal(t, "Joe Carter", lead.Name)
	assert.Equal(t, "Joe's HVAC Repair", lead.Company)
	assert.Equal(t, "5551234567", lead.Phone)
	assert.Equal(t, "joe@example.com", lead.Email)
	assert.Equal(t, 12000, lead.Budget)
	assert.Equal(t, "Google Ads for emergency repair calls", lead.Notes)
	assert.Equal(t, "bark", lead.Source)
	assert.True(t, lead.CreatedAt.Equal(received))
}

func TestParseLeadNotificationRejectsNonLeads(t *testing.T) {
	_, ok := ParseLeadNotification("news@bark.com", "Weekly digest", "Top stories this week...", time.Now())
	assert.False(t, ok)
}

func TestParseLeadNotificationSubjectAsNotes(t *testing.T) {
	lead, ok := ParseLeadNotification("leads@thumbtack.com", "Bistro owner needs SEO help", "Customer: Ana Reyes", time.Now())
	require.True(t, ok)
	assert.Equal(t, "Ana Reyes", lead.Name)
	assert.Equal(t, "thumbtack", lead.Source)
	assert.Equal(t, "Bistro owner needs SEO help", lead.Notes)
}

func TestSourceFromAddress(t *testing.T) {
	cases := []struct {
		from string
		want string
	}{
		{"Bark <noreply@mail.bark.com>", "bark"},
		{"leads@thumbtack.com", "thumbtack"},
		{"bot@leadgenco.io", "leadgenco"},
		{"nonsense", "email"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sourceFromAddress(tc.from), "from %q", tc.from)
	}
}

func TestParseRFC822Multipart(t *testing.T) {
	raw := []byte("Message-ID: <abc@bark.com>\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Name: Joe Carter\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Name: Joe Carter</p>\r\n" +
		"--XYZ--\r\n")

	msgID, body := parseRFC822(raw)
	assert.Equal(t, "<abc@bark.com>", msgID)
	assert.Contains(t, body, "Name: Joe Carter")
}

func TestParseRFC822HTMLOnlyKeepsLines(t *testing.T) {
	raw := []byte("Content-Type: text/html\r\n" +
		"\r\n" +
		"<div>Name: Ana Reyes</div><div>Phone: 555 111 2222</div>\r\n")

	_, body := parseRFC822(raw)
	lead, ok := ParseLeadNotification("x@bark.com", "New lead", body, time.Now())
	require.True(t, ok)
	assert.Equal(t, "Ana Reyes", lead.Name)
	assert.Equal(t, "5551112222", lead.Phone)
}
