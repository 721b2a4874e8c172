package faq

// FAQ is read-only reference data maintained by site admins. The client never
// mutates entries; the only write-path is the fire-and-forget view counter on
// the backend.
type FAQ struct {
	ID        int      `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Keywords  []string `json:"keywords,omitempty"`
	Category  string   `json:"category"`
	IsActive  bool     `json:"is_active"`
	Priority  int      `json:"priority"`
	ViewCount int      `json:"view_count"`
}
