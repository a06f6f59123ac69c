package models

// ImportRow is one CSV data line keyed by normalized header name.
type ImportRow struct {
	Line   int
	Fields map[string]string
}

func (r ImportRow) Get(name string) string {
	return r.Fields[name]
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}
