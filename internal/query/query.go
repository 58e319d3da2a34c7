// Package query переводит параметры списка (?price[lt]=500&sort=-price
// &fields=name,price&page=2&limit=10) в условия gorm. Колонки берутся
// только из разрешенной схемы, неизвестные параметры игнорируются.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
	// MaxPage: смещение (page-1)*limit не переполняет int
	MaxPage = math.MaxInt / MaxLimit
)

var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
	"ne":  "<>",
}

// reserved - параметры управления, а не фильтры
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Schema: имя поля в API -> колонка в БД
type Schema map[string]string

type Filter struct {
	Column   string
	Operator string
	Value    interface{}
}

type SortField struct {
	Column string
	Desc   bool
}

type Query struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

// Parse строит Query из url.Values по схеме
func Parse(values url.Values, schema Schema) *Query {
	q := &Query{Page: DefaultPage, Limit: DefaultLimit}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		field, op := splitKey(key)
		column, ok := schema[field]
		if !ok {
			continue
		}
		sqlOp, ok := operators[op]
		if op == "" {
			sqlOp, ok = "=", true
		}
		if !ok {
			continue
		}
		q.Filters = append(q.Filters, Filter{Column: column, Operator: sqlOp, Value: typed(vals[0])})
	}

	for _, name := range splitList(values.Get("sort")) {
		desc := strings.HasPrefix(name, "-")
		if column, ok := schema[strings.TrimPrefix(name, "-")]; ok {
			q.Sort = append(q.Sort, SortField{Column: column, Desc: desc})
		}
	}

	for _, name := range splitList(values.Get("fields")) {
		if column, ok := schema[name]; ok {
			q.Fields = append(q.Fields, column)
		}
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = min(page, MaxPage)
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = min(limit, MaxLimit)
	}
	return q
}

// ParseWithDefaults: параметры запроса поверх значений алиаса (top-5-cheap)
func ParseWithDefaults(values, defaults url.Values, schema Schema) *Query {
	merged := url.Values{}
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return Parse(merged, schema)
}

// Apply накладывает фильтры, сортировку, выборку полей и пагинацию.
// defaultSort используется, если sort не задан.
func (q *Query) Apply(db *gorm.DB, defaultSort string) *gorm.DB {
	for _, f := range q.Filters {
		db = db.Where(fmt.Sprintf("%s %s ?", f.Column, f.Operator), f.Value)
	}

	if len(q.Sort) == 0 && defaultSort != "" {
		db = db.Order(defaultSort)
	}
	for _, s := range q.Sort {
		if s.Desc {
			db = db.Order(s.Column + " DESC")
		} else {
			db = db.Order(s.Column)
		}
	}

	if len(q.Fields) > 0 {
		db = db.Select(q.selectColumns())
	}

	return db.Offset(q.Offset()).Limit(q.Limit)
}

// Offset - число пропускаемых строк для текущей страницы
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

func (q *Query) selectColumns() []string {
	cols := []string{"id"}
	for _, c := range q.Fields {
		if c != "id" {
			cols = append(cols, c)
		}
	}
	return cols
}

// splitKey: "price[gte]" -> ("price", "gte")
func splitKey(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// typed: числа передаем как числа, чтобы сравнение было числовым
func typed(v string) interface{} {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
