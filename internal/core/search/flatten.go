package search

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Flatten walks an arbitrary record into a map of dotted-path → lowercased
// string values, plus a synthetic "all" key concatenating every retained
// value. Credential-bearing fields (password, token), fields whose name
// contains "date", and timestamp values are excluded so they can never be
// matched by a search term. Arrays flatten to their items joined by spaces.
func Flatten(v any) map[string]string {
	fields := make(map[string]string)

	raw, err := json.Marshal(v)
	if err != nil {
		fields["all"] = ""
		return fields
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		fields["all"] = ""
		return fields
	}

	walk("", decoded, fields)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if fields[k] != "" {
			parts = append(parts, fields[k])
		}
	}
	fields["all"] = strings.Join(parts, " ")
	return fields
}

func walk(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for key, child := range t {
			if excludedKey(key) {
				continue
			}
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			walk(path, child, out)
		}
	case []any:
		joined := flattenItems(t)
		if joined != "" && prefix != "" {
			out[prefix] = joined
		}
	default:
		if s := scalar(t); s != "" && prefix != "" {
			out[prefix] = s
		}
	}
}

// flattenItems renders array items: scalars directly, nested objects as
// their retained values space-joined in stable key order.
func flattenItems(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			sub := make(map[string]string)
			walk("item", item, sub)
			subKeys := make([]string, 0, len(sub))
			for k := range sub {
				subKeys = append(subKeys, k)
			}
			sort.Strings(subKeys)
			for _, k := range subKeys {
				if sub[k] != "" {
					parts = append(parts, sub[k])
				}
			}
		default:
			if s := scalar(item); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		if isTimestamp(t) {
			return ""
		}
		return strings.ToLower(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func excludedKey(key string) bool {
	k := strings.ToLower(key)
	return k == "password" || k == "token" || strings.Contains(k, "date")
}

func isTimestamp(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
