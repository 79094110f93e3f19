package repository

import (
	"fmt"
	"strings"

	"github.com/prperemyshlev/storyboard-api/internal/domain"
)

// filterOps maps the q.op vocabulary onto SQL comparison operators
var filterOps = map[string]string{
	"eq":   "=",
	"ne":   "<>",
	"lt":   "<",
	"le":   "<=",
	"gt":   ">",
	"ge":   ">=",
	"like": "LIKE",
}

// listQuery is the rendered tail of a list statement
type listQuery struct {
	where string
	order string
	page  string
	args  []any
}

// buildListQuery renders opts against a whitelist of filterable columns.
// columns maps API field names to SQL column names.
func buildListQuery(columns map[string]string, opts domain.ListOptions) (*listQuery, error) {
	q := &listQuery{}

	conds := make([]string, 0, len(opts.Filters))
	for _, f := range opts.Filters {
		col, ok := columns[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.Field)
		}

		op := f.Op
		if op == "" {
			op = "eq"
		}

		sqlOp, ok := filterOps[op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
		}

		q.args = append(q.args, f.Value)
		if op == "like" {
			conds = append(conds, fmt.Sprintf("CAST(%s AS TEXT) LIKE $%d", col, len(q.args)))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, sqlOp, len(q.args)))
	}

	if len(conds) > 0 {
		q.where = " WHERE " + strings.Join(conds, " AND ")
	}

	sortCol := "id"
	if opts.SortField != "" {
		col, ok := columns[opts.SortField]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, opts.SortField)
		}
		sortCol = col
	}

	dir := "ASC"
	switch strings.ToLower(opts.SortDir) {
	case "", domain.SortAsc:
	case domain.SortDesc:
		dir = "DESC"
	default:
		return nil, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidFilter, opts.SortDir)
	}

	q.order = fmt.Sprintf(" ORDER BY %s %s", sortCol, dir)
	if sortCol != "id" {
		// ties broken by id so paging is stable
		q.order += ", id ASC"
	}

	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidFilter)
	}
	if opts.Limit > 0 {
		q.page += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		q.page += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	return q, nil
}

// selectSQL returns the paged select statement for base (a "SELECT ... FROM table")
func (q *listQuery) selectSQL(base string) string {
	return base + q.where + q.order + q.page
}

// countSQL returns the matching count statement for table
func (q *listQuery) countSQL(table string) string {
	return "SELECT COUNT(*) FROM " + table + q.where
}
