// Package email captures leads from platform notification emails over IMAP.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
	"starz-engine/internal/intake"
	"starz-engine/internal/secrets"
)

type Fetcher struct {
	Cfg config.Config
}

func (f *Fetcher) Name() string { return "email" }

// Fetch logs in, parses unseen notifier emails into leads, and returns them
// with a Finalize that marks the consumed messages seen. Messages are only
// marked after the caller has processed the batch, so a crash re-delivers.
func (f *Fetcher) Fetch(ctx context.Context) (intake.Result, error) {
	ec := f.Cfg.Intake.Email
	if !ec.Enabled {
		return intake.Result{Source: f.Name()}, nil
	}

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(f.Cfg))
	if err != nil {
		return intake.Result{}, err
	}

	addr := ec.IMAPHost
	if !strings.Contains(addr, ":") {
		if ec.IMAPPort != 0 {
			addr = fmt.Sprintf("%s:%d", addr, ec.IMAPPort)
		} else {
			addr += ":993"
		}
	}

	mailbox := ec.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	c, err := dialAndLogin(ctx, addr, ec.Username, password)
	if err != nil {
		return intake.Result{}, err
	}

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		logoutAndClose(c)
		return intake.Result{}, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, ec.MaxMessages)
	if err != nil {
		logoutAndClose(c)
		return intake.Result{}, err
	}

	var leads []domain.Lead
	processed := make([]imap.UID, 0, len(msgs))

	for _, m := range msgs {
		msgID, body := parseRFC822(m.RawMessage)

		// Require subject match when search_subject_any is set.
		if len(ec.SearchSubjectAny) > 0 && !containsAnyCI(m.Subject, ec.SearchSubjectAny) {
			processed = append(processed, m.UID)
			continue
		}

		received := m.Date
		if received.IsZero() {
			received = time.Now().UTC()
		}

		lead, ok := ParseLeadNotification(m.From, m.Subject, body, received)
		if !ok {
			log.Printf("[email] uid=%d subject=%q did not parse as a lead", m.UID, m.Subject)
			processed = append(processed, m.UID)
			continue
		}

		if msgID != "" {
			lead.SourceID = "email:" + hashString(msgID)
		} else {
			lead.SourceID = "email:" + uuid.NewString()
		}

		leads = append(leads, lead)
		processed = append(processed, m.UID)
	}

	return intake.Result{
		Source: f.Name(),
		Leads:  leads,
		Finalize: func(ctx context.Context) error {
			defer logoutAndClose(c)
			return markSeen(c, processed)
		},
	}, nil
}
