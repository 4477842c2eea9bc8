package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix prefixes the environment variables read by NewEnvLoader.
const DefaultEnvPrefix = "SCENEFORGE_"

// EnvLoader loads configuration from environment variables.
// SCENEFORGE_LIVE_MAX_CLIENTS maps to live.max_clients.
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// NewEnvLoaderFrom reads variables from environ instead of the process
// environment.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: func() []string { return environ }}
}

// Load reads prefixed variables. Empty values are kept as empty strings.
// A variable with no section part is ignored.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := envToPath(strings.TrimPrefix(name, l.prefix))
		if !ok {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts LIVE_MAX_CLIENTS to live.max_clients.
func envToPath(name string) (string, bool) {
	section, key, ok := strings.Cut(strings.ToLower(name), "_")
	if !ok || section == "" || key == "" {
		return "", false
	}
	return section + "." + key, true
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.ContainsAny(s, ".eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
