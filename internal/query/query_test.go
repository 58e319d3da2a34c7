package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	"name":           "name",
	"price":          "price",
	"difficulty":     "difficulty",
	"ratingsAverage": "ratings_average",
	"duration":       "duration",
}

func TestParse_FiltersWithOperators(t *testing.T) {
	values, err := url.ParseQuery("duration[gte]=5&difficulty=easy&price[lt]=1500.5&secret=1&price[like]=x")
	require.NoError(t, err)

	q := Parse(values, testSchema)

	assert.ElementsMatch(t, []Filter{
		{Column: "duration", Operator: ">=", Value: int64(5)},
		{Column: "difficulty", Operator: "=", Value: "easy"},
		{Column: "price", Operator: "<", Value: 1500.5},
	}, q.Filters)
}

func TestParse_SortFieldsPagination(t *testing.T) {
	values, err := url.ParseQuery("sort=-ratingsAverage,price,unknown&fields=name,price,password&page=3&limit=20")
	require.NoError(t, err)

	q := Parse(values, testSchema)

	assert.Equal(t, []SortField{{Column: "ratings_average", Desc: true}, {Column: "price"}}, q.Sort)
	assert.Equal(t, []string{"name", "price"}, q.Fields)
	assert.Equal(t, []string{"id", "name", "price"}, q.selectColumns())
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Limit)
}

func TestParse_Defaults(t *testing.T) {
	q := Parse(url.Values{"page": {"-1"}, "limit": {"abc"}}, testSchema)
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Empty(t, q.Filters)

	q = Parse(url.Values{"limit": {"100000"}}, testSchema)
	assert.Equal(t, MaxLimit, q.Limit)
}

func TestParse_HugePageDoesNotOverflowOffset(t *testing.T) {
	q := Parse(url.Values{"page": {"9223372036854775807"}, "limit": {"1000"}}, testSchema)
	assert.Equal(t, MaxPage, q.Page)
	assert.Positive(t, q.Offset())

	q = Parse(url.Values{"page": {"3"}, "limit": {"20"}}, testSchema)
	assert.Equal(t, 40, q.Offset())
}

func TestParseWithDefaults_RequestWins(t *testing.T) {
	defaults := url.Values{"limit": {"5"}, "sort": {"-ratingsAverage,price"}}

	q := ParseWithDefaults(url.Values{}, defaults, testSchema)
	assert.Equal(t, 5, q.Limit)
	assert.Len(t, q.Sort, 2)

	q = ParseWithDefaults(url.Values{"limit": {"2"}}, defaults, testSchema)
	assert.Equal(t, 2, q.Limit)
}

func TestSplitKey(t *testing.T) {
	f, op := splitKey("price[gte]")
	assert.Equal(t, "price", f)
	assert.Equal(t, "gte", op)

	f, op = splitKey("price")
	assert.Equal(t, "price", f)
	assert.Empty(t, op)
}
