package domain

// Filter is a single "field op value" condition on a list query
type Filter struct {
	Field string
	Op    string
	Value string
}

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListOptions narrows, orders and pages a list query
type ListOptions struct {
	Filters   []Filter
	SortField string
	SortDir   string
	Limit     int
	Offset    int
}
