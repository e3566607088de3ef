package models

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// AuditLog is a single audit trail record.
type AuditLog struct {
	ID              int64           `json:"id"`
	Action          string          `json:"action"`
	ActionDisplay   string          `json:"action_display"`
	Severity        string          `json:"severity"`
	SeverityDisplay string          `json:"severity_display"`
	User            *int64          `json:"user"`
	Username        string          `json:"username"`
	UserDisplay     string          `json:"user_display"`
	IPAddress       string          `json:"ip_address"`
	UserAgent       string          `json:"user_agent"`
	Method          string          `json:"method"`
	Path            string          `json:"path"`
	Description     string          `json:"description"`
	ObjectType      string          `json:"object_type"`
	ObjectID        *int64          `json:"object_id"`
	ObjectRepr      string          `json:"object_repr"`
	ExtraData       json.RawMessage `json:"extra_data,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
	Success         bool            `json:"success"`
	ErrorMessage    string          `json:"error_message"`
}

// AuditPage is one page of the paginated audit list.
type AuditPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []AuditLog `json:"results"`
}

// HasNext reports whether another page follows.
func (p *AuditPage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// CountBucket is one row of a grouped count in AuditStats. Exactly one of
// the key fields is set depending on the grouping.
type CountBucket struct {
	Action    string `json:"action,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Username  string `json:"username,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Count     int    `json:"count"`
}

// AuditStats summarises the (optionally filtered) audit log.
type AuditStats struct {
	TotalLogs    int           `json:"total_logs"`
	Last24Hours  int           `json:"last_24_hours"`
	LastWeek     int           `json:"last_week"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	ByAction     []CountBucket `json:"by_action"`
	BySeverity   []CountBucket `json:"by_severity"`
	ByUser       []CountBucket `json:"by_user"`
	ByIP         []CountBucket `json:"by_ip"`
}

// AuditFilter narrows audit list, stats and export queries. Zero values are
// omitted from the query string.
type AuditFilter struct {
	Action     string
	Severity   string
	Username   string
	IPAddress  string
	ObjectType string
	StartDate  string
	EndDate    string
	Success    *bool
	Search     string
	Ordering   string
}

// Values encodes the filter as query parameters understood by /api/audit/.
func (f AuditFilter) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("action", f.Action)
	set("severity", f.Severity)
	set("username", f.Username)
	set("ip_address", f.IPAddress)
	set("object_type", f.ObjectType)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	set("search", f.Search)
	set("ordering", f.Ordering)
	if f.Success != nil {
		v.Set("success", strconv.FormatBool(*f.Success))
	}
	return v
}
