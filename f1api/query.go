package f1api

import (
	"net/url"
	"strings"
)

// Param is one query parameter. Query keeps parameters in insertion order.
type Param struct {
	Key   string
	Value string
}

// Query is a request against the remote API: a path relative to the base URL
// and an ordered list of query parameters.
type Query struct {
	Path   string
	Params []Param
}

// Add appends a query parameter and returns the query for chaining.
func (q Query) Add(key, value string) Query {
	q.Params = append(append([]Param(nil), q.Params...), Param{Key: key, Value: value})
	return q
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as a query string, preserving order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// String renders path and query, e.g. "/drivers/search?q=max&limit=30".
func (q Query) String() string {
	if len(q.Params) == 0 {
		return q.Path
	}
	return q.Path + "?" + q.Encode()
}

// ExpandPath substitutes {name} segments in template with path-escaped values.
// Placeholders without a value are left in place.
func ExpandPath(template string, values map[string]string) string {
	if !strings.Contains(template, "{") {
		return template
	}
	segments := strings.Split(template, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := segment[1 : len(segment)-1]
		if value, ok := values[name]; ok {
			segments[i] = url.PathEscape(value)
		}
	}
	return strings.Join(segments, "/")
}

// PathParams returns the {name} placeholders of template in order.
func PathParams(template string) []string {
	var names []string
	for _, segment := range strings.Split(template, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			names = append(names, segment[1:len(segment)-1])
		}
	}
	return names
}
