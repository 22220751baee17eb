package model

import (
	"encoding/json"
	"time"
)

// AudienceType distinguishes role-wide notifications from per-user ones.
type AudienceType string

const (
	AudienceRole AudienceType = "role"
	AudienceUser AudienceType = "user"
)

// Fixed role audiences known to the platform.
const (
	RoleAdmin     = "admin"
	RoleChina     = "china"
	RoleVenezuela = "venezuela"
	RolePagos     = "pagos"
)

// Severity grades notification urgency for the presentation layer.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Notification is a persisted in-app notification addressed to a role or
// a single user. Rows are append-only; read state lives in separate
// receipt rows so it is tracked per reader.
type Notification struct {
	ID            string
	AudienceType  AudienceType
	AudienceValue string
	Title         string
	Description   string
	Href          string
	Severity      Severity
	OrderID       string
	// DedupeKey backs the store-level uniqueness guarantee. Empty for
	// rules that dedupe by time window instead.
	DedupeKey string
	CreatedAt time.Time
	// Unread is the legacy single-reader flag kept for older clients;
	// Read below is derived from receipts and is authoritative.
	Unread bool
	Read   bool
}

// Text is a localizable string: a translation key with arguments plus the
// raw fallback shown when the key is unknown to the presentation layer.
type Text struct {
	Key      string
	Args     map[string]any
	Fallback string
}

// PlainText builds a Text that carries no translation key.
func PlainText(s string) Text {
	return Text{Fallback: s}
}

// Encode renders the wire form consumed by the presentation layer:
// "key|{json args}" when a key is present, otherwise the fallback as-is.
func (t Text) Encode() string {
	if t.Key == "" {
		return t.Fallback
	}
	if len(t.Args) == 0 {
		return t.Key
	}
	args, err := json.Marshal(t.Args)
	if err != nil {
		return t.Fallback
	}
	return t.Key + "|" + string(args)
}
