package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/domain"
	"github.com/prperemyshlev/storyboard-api/internal/service"
)

func testContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/projects?"+rawQuery, nil)
	return c
}

var testAPI = config.APIConfig{PathPrefix: "/v1", PageSizeDefault: 100, PageSizeMax: 500}

func TestParseListOptions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.ListOptions
	}{
		{
			name:  "defaults",
			query: "",
			want:  domain.ListOptions{Limit: 100},
		},
		{
			name:  "filters without ops default to eq",
			query: "q.field=name&q.value=alpha&q.field=id&q.value=3",
			want: domain.ListOptions{
				Filters: []domain.Filter{
					{Field: "name", Op: "eq", Value: "alpha"},
					{Field: "id", Op: "eq", Value: "3"},
				},
				Limit: 100,
			},
		},
		{
			name:  "ops, sort and paging",
			query: "q.field=name&q.op=like&q.value=te%25&sort_field=name&sort_dir=desc&limit=5&offset=10",
			want: domain.ListOptions{
				Filters:   []domain.Filter{{Field: "name", Op: "like", Value: "te%"}},
				SortField: "name",
				SortDir:   "desc",
				Limit:     5,
				Offset:    10,
			},
		},
		{
			name:  "limit is capped",
			query: "limit=100000",
			want:  domain.ListOptions{Limit: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseListOptions(testContext(tt.query), testAPI)
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts)
		})
	}
}

func TestParseListOptionsRejectsMalformedQueries(t *testing.T) {
	queries := map[string]string{
		"uneven values":   "q.field=name&q.field=id&q.value=x",
		"uneven ops":      "q.field=name&q.field=id&q.op=eq&q.value=x&q.value=y",
		"text limit":      "limit=ten",
		"zero limit":      "limit=0",
		"negative offset": "offset=-1",
	}

	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			_, err := parseListOptions(testContext(query), testAPI)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, http.StatusBadRequest, statusFor(err))
		})
	}
}
