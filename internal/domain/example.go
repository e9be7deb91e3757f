package domain

// Example is a labeled corpus record used as a retrieval candidate.
// Examples are immutable once loaded; identity is assigned at load time.
type Example struct {
	ID       string
	Text     string
	Label    Label
	Category string
}

// Retrieved is one retrieval hit: an example text with its label and the
// cosine distance from the query vector. Degraded (fuzzy) retrieval leaves
// Label and Category empty.
type Retrieved struct {
	Text     string
	Label    Label
	Category string
	Distance float64
}
