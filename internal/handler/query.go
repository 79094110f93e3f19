package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/domain"
)

// List query parameters
const (
	paramFilterField = "q.field"
	paramFilterOp    = "q.op"
	paramFilterValue = "q.value"
	paramSortField   = "sort_field"
	paramSortDir     = "sort_dir"
	paramLimit       = "limit"
	paramOffset      = "offset"
)

// Paging response headers
const (
	HeaderTotal  = "X-Total"
	HeaderLimit  = "X-Limit"
	HeaderOffset = "X-Offset"
)

// parseListOptions reads filters, ordering and paging from the query string.
// q.field and q.value are parallel arrays; q.op is either absent (all eq) or parallel too.
func parseListOptions(c *gin.Context, api config.APIConfig) (domain.ListOptions, error) {
	opts := domain.ListOptions{
		SortField: c.Query(paramSortField),
		SortDir:   c.Query(paramSortDir),
		Limit:     api.PageSizeDefault,
	}

	fields := c.QueryArray(paramFilterField)
	ops := c.QueryArray(paramFilterOp)
	values := c.QueryArray(paramFilterValue)

	if len(fields) != len(values) || (len(ops) > 0 && len(ops) != len(fields)) {
		return opts, fmt.Errorf("%w: %d fields, %d ops and %d values", errInvalidQuery, len(fields), len(ops), len(values))
	}

	for i, field := range fields {
		f := domain.Filter{Field: field, Op: "eq", Value: values[i]}
		if len(ops) > 0 {
			f.Op = ops[i]
		}
		opts.Filters = append(opts.Filters, f)
	}

	if raw, ok := c.GetQuery(paramLimit); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return opts, fmt.Errorf("%w: limit %q", errInvalidQuery, raw)
		}
		opts.Limit = min(limit, api.PageSizeMax)
	}

	if raw, ok := c.GetQuery(paramOffset); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return opts, fmt.Errorf("%w: offset %q", errInvalidQuery, raw)
		}
		opts.Offset = offset
	}

	return opts, nil
}

func setPageHeaders(c *gin.Context, opts domain.ListOptions, total int) {
	c.Header(HeaderTotal, strconv.Itoa(total))
	c.Header(HeaderLimit, strconv.Itoa(opts.Limit))
	c.Header(HeaderOffset, strconv.Itoa(opts.Offset))
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
