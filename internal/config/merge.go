package config

import "strings"

// deepMerge merges src into dst. Nested maps merge; anything else in src
// replaces the value in dst.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, sv := range src {
		sm, srcMap := sv.(map[string]any)
		dm, dstMap := dst[key].(map[string]any)
		if srcMap && dstMap {
			dst[key] = deepMerge(dm, sm)
			continue
		}
		if srcMap {
			dst[key] = deepMerge(nil, sm)
			continue
		}
		dst[key] = sv
	}
	return dst
}

// setPath sets a dotted path, creating intermediate maps.
func setPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// getPath reads a dotted path.
func getPath(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
