package domain

import "time"

type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	Source    string    `json:"source"` // bark/google-ads/referral/etc.
	Budget    int       `json:"budget"` // monthly marketing budget in USD, 0 = unknown
	CreatedAt time.Time `json:"createdAt"`
	SourceID  string    `json:"sourceId"` // stable intake dedupe key, e.g. "email:<uid>"
}
