package history

import "time"

// Entry kinds
const (
	KindCalculate = "calculate"
	KindChain     = "chain"
	KindBatch     = "batch"
)

// Entry is one recorded calculation
type Entry struct {
	ID         int64     `yaml:"id" json:"id"`
	Kind       string    `yaml:"kind" json:"kind"`
	Expression string    `yaml:"expression" json:"expression"`
	Result     float64   `yaml:"result" json:"result"`
	Error      string    `yaml:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
}

// Failed reports whether the calculation ended in an error
func (e Entry) Failed() bool {
	return e.Error != ""
}

// ListFilter specifies criteria for filtering entries.
type ListFilter struct {
	// Kind filters by entry kind (calculate, chain, batch).
	Kind string

	// FailedOnly keeps only entries that recorded an error.
	FailedOnly bool

	// Limit caps the number of entries returned (0 = no limit).
	Limit int
}

// Stats summarises a tape
type Stats struct {
	Entries  int            `json:"entries"`
	Failures int            `json:"failures"`
	ByKind   map[string]int `json:"by_kind"`
	Oldest   *time.Time     `json:"oldest,omitempty"` // nil for an empty tape
	Newest   *time.Time     `json:"newest,omitempty"`
	Backend  string         `json:"backend"`
}
