package handlers

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseQuery expands bracket notation query strings into nested values:
// "filters[author][]=5" becomes {"filters": {"author": ["5"]}} and
// "filters[date][from][year]=2000" a nested map. Maps keyed 0..n-1 become
// lists.
func ParseQuery(values url.Values) map[string]interface{} {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := map[string]interface{}{}
	for _, key := range keys {
		path := splitKey(key)
		for _, v := range values[key] {
			assign(out, path, v)
		}
	}
	for k, v := range out {
		out[k] = listify(v)
	}
	return out
}

func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func assign(m map[string]interface{}, path []string, value string) {
	name := path[0]
	if len(path) == 1 {
		m[name] = value
		return
	}
	if path[1] == "" {
		list, _ := m[name].([]interface{})
		m[name] = append(list, value)
		return
	}
	child, ok := m[name].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		m[name] = child
	}
	assign(child, path[1:], value)
}

func listify(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = listify(child)
	}
	if len(m) == 0 {
		return m
	}
	list := make([]interface{}, len(m))
	for k, child := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != k {
			return m
		}
		list[i] = child
	}
	return list
}
