package models

import "time"

// Record is one fetched (and enriched) domain document
type Record map[string]interface{}

// Parameters is the opaque key/value bag passed through to the generation
// engine (date ranges, entity-id filters)
type Parameters map[string]interface{}

// String returns the string value for key, or "" when absent or not a string
func (p Parameters) String(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Time parses the value for key as RFC 3339 or YYYY-MM-DD
func (p Parameters) Time(key string) (time.Time, bool) {
	s := p.String(key)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// StringSlice returns the value for key as a slice of strings
func (p Parameters) StringSlice(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Artifact is the rendered output of one report generation. It is transient:
// the delivery dispatcher references it by path during delivery, then the
// file is deleted after a grace period and by the periodic age sweep.
type Artifact struct {
	FileName     string       `json:"fileName"`
	Format       ReportFormat `json:"format"`
	ContentType  string       `json:"contentType"`
	Data         []byte       `json:"-"`
	TemplateName string       `json:"templateName"`
	RecordCount  int          `json:"recordCount"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// ReportGroup is how grouped data is represented in the JSON envelope
type ReportGroup struct {
	Group string                   `json:"group"`
	Items []map[string]interface{} `json:"items"`
}

// ReportEnvelope is the structured JSON output format
type ReportEnvelope struct {
	Template EnvelopeTemplate `json:"template"`
	Data     interface{}      `json:"data"`
	Summary  EnvelopeSummary  `json:"summary"`
}

type EnvelopeTemplate struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Parameters  Parameters `json:"parameters,omitempty"`
}

type EnvelopeSummary struct {
	TotalRecords int      `json:"totalRecords"`
	Fields       []string `json:"fields"`
}

// DeliveryError records a single recipient's delivery failure. Delivery
// failures are non-fatal to the job.
type DeliveryError struct {
	Email  string `json:"email"`
	Method string `json:"method"`
	Error  string `json:"error"`
}
