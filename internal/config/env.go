package config

import (
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INKWELL_"

// envLayer turns prefixed entries of environ into a settings map.
func envLayer(prefix string, environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		path := envPath(strings.TrimPrefix(name, prefix))
		if path == "" {
			continue
		}
		setPath(out, path, parseEnvValue(value))
	}
	return out
}

// envPath converts HISTORY_MAX_SIZE to history.maxSize.
func envPath(name string) string {
	parts := strings.Split(strings.ToLower(name), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	var key strings.Builder
	for i, p := range parts[1:] {
		if p == "" {
			continue
		}
		if i > 0 {
			p = strings.ToUpper(p[:1]) + p[1:]
		}
		key.WriteString(p)
	}
	return parts[0] + "." + key.String()
}

func parseEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
