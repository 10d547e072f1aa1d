package gate

import (
	"regexp"
	"strings"

	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

// ApplyAllowAlways synthesises and installs an allow-always entry for
// call on behalf of a caller that already decided the outcome is
// AllowedAlways outside of Evaluate's own pipeline — namely the
// subagent proxy, which runs the interactive prompt on the parent's
// behalf and must update the parent's allowlist itself. It returns a
// human-readable description of the synthesised pattern, echoed back
// to the requesting subagent for display only.
func (c *Config) ApplyAllowAlways(call ToolCall, category Category, goos string) string {
	if category == CategoryShell {
		_, parsed, _ := matchShellAllowlist(c, call, goos)
		c.addShellAllowAlways(parsed)
		if len(parsed.Tokens) == 0 {
			return ""
		}
		return strings.Join(parsed.Tokens, " ")
	}
	c.addRegexAllowAlways(call)
	return "^" + regexp.QuoteMeta(extractMatchTarget(c, call)) + "$"
}

// addShellAllowAlways synthesises a shell-prefix allowlist entry from a
// parsed command: the full parsed token sequence, pinned to the
// dialect it was parsed in. A malformed call that never produced tokens
// (e.g. non-JSON arguments) synthesises nothing — there is no safe
// prefix to remember.
func (c *Config) addShellAllowAlways(parsed shellparse.ParsedShellCommand) {
	if len(parsed.Tokens) == 0 {
		return
	}
	c.ShellAllowlist = append(c.ShellAllowlist, AllowlistEntry{
		Kind:    EntryKindShellPrefix,
		Prefix:  append([]string(nil), parsed.Tokens...),
		Dialect: parsed.Dialect,
	})
}

// addRegexAllowAlways synthesises a regex allowlist entry for a non-shell
// tool call: the current match-target value, anchored and escaped, so
// the entry matches only that exact literal value going forward.
func (c *Config) addRegexAllowAlways(call ToolCall) {
	target := extractMatchTarget(c, call)
	source := "^" + regexp.QuoteMeta(target) + "$"
	compiled, err := regexp.Compile(source)
	if err != nil {
		// Quoted meta-characters should always compile; if they somehow
		// don't, skip rather than add a broken entry.
		return
	}
	c.RegexAllowlist = append(c.RegexAllowlist, AllowlistEntry{
		Kind:    EntryKindRegex,
		Tool:    call.Name,
		Pattern: compiled,
		Source:  source,
	})
}
