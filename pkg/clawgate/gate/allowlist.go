package gate

import (
	"encoding/json"

	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

// shellArgs is the minimal shape the evaluator expects from a shell
// tool's arguments: a command string and an optional dialect tag. Any
// other fields the tool sends are ignored.
type shellArgs struct {
	Command string `json:"command"`
	Shell   string `json:"shell,omitempty"`
}

// matchShellAllowlist is the shell matching path. A parse failure is
// reported to the caller as "no match", never as a match — it must
// still fall through to prompting.
func matchShellAllowlist(cfg *Config, call ToolCall, goos string) (matched bool, parsed shellparse.ParsedShellCommand, err error) {
	var args shellArgs
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		return false, shellparse.ParsedShellCommand{}, err
	}

	dialect := shellparse.Dialect(args.Shell)
	if dialect == "" {
		dialect = cfg.DialectOverride
	}
	if dialect == "" {
		dialect = shellparse.DetectDialect(goos)
	}

	parsed = shellparse.Parse(args.Command, dialect)
	if !parsed.Safe() {
		// A command with any unsafe flag set is never matched, by
		// construction: we don't even consult the allowlist.
		return false, parsed, nil
	}

	for _, entry := range cfg.ShellAllowlist {
		if matchesPrefix(parsed, entry) {
			return true, parsed, nil
		}
	}
	return false, parsed, nil
}

// matchesPrefix reports whether entry's token prefix matches parsed,
// honouring the dialect tag and the cross-dialect first-token
// equivalence rule (only permitted for dialect-unset entries, and only
// when the prefix is a single token or the rest matches literally).
func matchesPrefix(parsed shellparse.ParsedShellCommand, entry AllowlistEntry) bool {
	if entry.Kind != EntryKindShellPrefix {
		return false
	}
	if len(entry.Prefix) == 0 || len(entry.Prefix) > len(parsed.Tokens) {
		return false
	}
	if entry.Dialect != "" && entry.Dialect != parsed.Dialect {
		return false
	}

	restMatches := literalMatch(parsed.Tokens[1:len(entry.Prefix)], entry.Prefix[1:])

	first := entry.Prefix[0]
	parsedFirst := parsed.Tokens[0]
	if first == parsedFirst {
		return restMatches
	}

	if entry.Dialect != "" {
		return false
	}
	if !shellparse.EquivalentFirstTokens(first, parsedFirst) {
		return false
	}
	return len(entry.Prefix) == 1 || restMatches
}

func literalMatch(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// extractMatchTarget derives the string a regex allowlist entry is
// tested against: a declared single argument field, or the whole
// arguments document when the tool declares none.
func extractMatchTarget(cfg *Config, call ToolCall) string {
	field, ok := cfg.MatchArgument[call.Name]
	if !ok {
		return string(call.Arguments)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(call.Arguments, &m); err != nil {
		return ""
	}
	raw, ok := m[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// matchRegexAllowlist is the non-shell matching path. A regex entry
// whose Pattern failed to compile at load time is retained but always
// skipped — it is never treated as a match.
func matchRegexAllowlist(cfg *Config, call ToolCall) bool {
	target := extractMatchTarget(cfg, call)
	for _, entry := range cfg.RegexAllowlist {
		if entry.Kind != EntryKindRegex || entry.Tool != call.Name {
			continue
		}
		if entry.Pattern == nil {
			continue
		}
		if entry.Pattern.MatchString(target) {
			return true
		}
	}
	return false
}
