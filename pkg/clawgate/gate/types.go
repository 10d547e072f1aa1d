// Package gate implements the approval-gate policy evaluator: the trust
// boundary that decides whether a model-proposed tool call may run, must
// be confirmed interactively, or is refused outright.
package gate

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

// Category is the closed set of tool categories the evaluator reasons
// about. Every tool belongs to exactly one.
type Category string

const (
	CategoryFileRead      Category = "file-read"
	CategoryFileWrite     Category = "file-write"
	CategoryShell         Category = "shell"
	CategoryNetwork       Category = "network"
	CategoryMemory        Category = "memory"
	CategorySubagent      Category = "subagent"
	CategoryMCP           Category = "mcp"
	CategoryPythonDynamic Category = "python-dynamic"
)

// Action is a per-category default, overridable by config file and CLI
// flags.
type Action string

const (
	ActionAllow Action = "allow"
	ActionGate  Action = "gate"
	ActionDeny  Action = "deny"
)

// ToolCall is the evaluator's input: a stable id, the tool's name, and
// its JSON argument bag. Arguments is kept as raw JSON so the evaluator
// never needs to know a tool's argument shape beyond the single
// "match argument" name a tool may declare.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Outcome is the result of one evaluation.
type Outcome string

const (
	Allowed       Outcome = "allowed"
	Denied        Outcome = "denied"
	AllowedAlways Outcome = "allowed_always"
	Aborted       Outcome = "aborted"
	RateLimited   Outcome = "rate_limited"
)

// Result is the full evaluation outcome, with enough detail to build a
// structured refusal (on Denied / RateLimited). On AllowedAlways the
// evaluator has already added the synthesised allowlist entry itself.
type Result struct {
	Outcome    Outcome
	Category   Category
	RetryAfter time.Duration // set only when Outcome == RateLimited
}

// AllowlistEntry is a tagged union: exactly one of Regex or ShellPrefix
// is set, discriminated by Kind.
type AllowlistEntryKind string

const (
	EntryKindRegex       AllowlistEntryKind = "regex"
	EntryKindShellPrefix AllowlistEntryKind = "shell_prefix"
)

type AllowlistEntry struct {
	Kind AllowlistEntryKind

	// Regex entry fields.
	Tool    string
	Pattern *regexp.Regexp // nil if compilation failed at load time — skipped, never a match
	Source  string         // the original pattern text, kept for serialization/debugging

	// ShellPrefix entry fields.
	Prefix  []string
	Dialect shellparse.Dialect // "" means "any dialect"
}

// DenialTracker is the per-tool rate-limit state. The invariant
// BackoffUntil >= LastDenial is maintained by recordDenial.
type DenialTracker struct {
	Count        int
	LastDenial   time.Time
	BackoffUntil time.Time
}

// backoffSchedule is the monotone backoff-duration function of denial
// count, saturating at the final entry.
var backoffSchedule = []time.Duration{
	0,
	0,
	5 * time.Second,
	15 * time.Second,
	60 * time.Second,
	300 * time.Second,
}

// scheduleFor returns the backoff duration for the n'th denial (1-indexed),
// saturating at the last schedule entry.
func scheduleFor(count int) time.Duration {
	idx := count - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(backoffSchedule) {
		idx = len(backoffSchedule) - 1
	}
	return backoffSchedule[idx]
}

// Config is the root evaluator state. It is created at process start,
// mutated by CLI/config loading and by "allow-always" prompt responses,
// and destroyed at process exit.
type Config struct {
	// MasterEnable gates the whole engine. False means every call is
	// allowed unconditionally — the --yolo escape hatch.
	MasterEnable bool

	// Categories holds the per-category default action. The evaluator
	// treats a missing entry as ActionGate.
	Categories map[Category]Action

	// CategoryOf maps a known tool name to its category. Names absent
	// from this table fall into CategoryPythonDynamic (the "dynamic"
	// category) unless the call self-declares one (see ResolveCategory).
	CategoryOf map[string]Category

	// MatchArgument names, per tool, the single JSON argument field used
	// as the match target for non-shell regex entries. Tools absent from
	// this map use the entire arguments document as the match target.
	MatchArgument map[string]string

	RegexAllowlist []AllowlistEntry
	ShellAllowlist []AllowlistEntry

	Denials map[string]*DenialTracker

	// Prompter answers the interactive four-choice protocol. Nil means
	// this process cannot prompt (e.g. a subagent without its own
	// terminal) — evaluation then treats a would-be prompt as Aborted.
	Prompter Prompter

	// DialectOverride, if set, replaces platform-based dialect
	// auto-detection for shell calls that don't declare their own
	// dialect. Empty means "detect from the host platform".
	DialectOverride shellparse.Dialect
}

// Prompter issues the interactive prompt protocol for a tool call that
// reached the gate action with no allowlist match and no active
// backoff. prompt.TerminalPrompter implements it against the process's
// own TTY. The subagent package provides no Prompter: a subagent asks
// its parent through subagent.ChildChannel.RequestApproval instead.
type Prompter interface {
	Prompt(call ToolCall, category Category) (Outcome, error)
}

// defaultCategoryActions are the built-in defaults, overridable via
// config file and CLI flags.
var defaultCategoryActions = map[Category]Action{
	CategoryFileRead:      ActionAllow,
	CategoryFileWrite:     ActionGate,
	CategoryShell:         ActionGate,
	CategoryNetwork:       ActionGate,
	CategoryMemory:        ActionAllow,
	CategorySubagent:      ActionGate,
	CategoryMCP:           ActionGate,
	CategoryPythonDynamic: ActionGate,
}

// NewConfig builds a Config with built-in category defaults and empty
// allowlists/denial state. Callers layer config-file and CLI overrides
// on top with the gateconfig package.
func NewConfig() *Config {
	cats := make(map[Category]Action, len(defaultCategoryActions))
	for k, v := range defaultCategoryActions {
		cats[k] = v
	}
	return &Config{
		MasterEnable:  true,
		Categories:    cats,
		CategoryOf:    defaultCategoryTable(),
		MatchArgument: defaultMatchArguments(),
		Denials:       make(map[string]*DenialTracker),
	}
}

// defaultCategoryTable is the fixed tool-name-to-category lookup table.
func defaultCategoryTable() map[string]Category {
	return map[string]Category{
		"read_file":   CategoryFileRead,
		"glob":        CategoryFileRead,
		"grep":        CategoryFileRead,
		"write_file":  CategoryFileWrite,
		"edit_file":   CategoryFileWrite,
		"shell":       CategoryShell,
		"bash":        CategoryShell,
		"web_fetch":   CategoryNetwork,
		"web_search":  CategoryNetwork,
		"memory_read": CategoryMemory,
		"memory_write": CategoryMemory,
		"subagent":    CategorySubagent,
		"task":        CategorySubagent,
		"mcp_call":    CategoryMCP,
	}
}

// defaultMatchArguments names the single JSON argument field tools use
// as their regex match target, rather than the whole arguments document.
func defaultMatchArguments() map[string]string {
	return map[string]string{
		"read_file":  "file_path",
		"write_file": "file_path",
		"edit_file":  "file_path",
		"web_fetch":  "url",
		"web_search": "query",
	}
}
