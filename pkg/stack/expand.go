package stack

import "regexp"

// envPattern matches ${VAR} and ${VAR:-default} placeholders. The lazy
// default match stops at the first closing brace, same as compose does.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnv substitutes ${VAR} and ${VAR:-default} placeholders in value.
// Unset and empty variables both fall back to the default; a bare ${VAR}
// with no value expands to the empty string.
func ExpandEnv(value string, env map[string]string) string {
	return envPattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if resolved := env[groups[1]]; resolved != "" {
			return resolved
		}
		return groups[2]
	})
}

func expandSlice(values []string, env map[string]string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = ExpandEnv(v, env)
	}
	return out
}
