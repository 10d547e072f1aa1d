package gateconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

// dialectFlagValues are the --dialect flag's accepted values.
var dialectFlagValues = map[string]shellparse.Dialect{
	"posix":      shellparse.DialectPOSIX,
	"cmd":        shellparse.DialectCmd,
	"powershell": shellparse.DialectPowerShell,
}

// ApplyDialectFlag implements --dialect: overrides platform-based shell
// dialect auto-detection for this process. An empty name is a no-op —
// the flag wasn't passed.
func ApplyDialectFlag(cfg *gate.Config, name string) error {
	if name == "" {
		return nil
	}
	dialect, ok := dialectFlagValues[name]
	if !ok {
		return fmt.Errorf("--dialect: unknown dialect %q, want one of posix, cmd, powershell", name)
	}
	cfg.DialectOverride = dialect
	return nil
}

// MaxSessionAllowFlags is the documented cap on repeatable --allow flags
// per process.
const MaxSessionAllowFlags = 16

// ApplyYolo implements --yolo: disables the master enable switch for
// this process.
func ApplyYolo(cfg *gate.Config, yolo bool) {
	if yolo {
		cfg.MasterEnable = false
	}
}

// ApplyAllowCategoryFlags implements repeatable --allow-category=<name>
// flags: each sets one category's action to allow.
func ApplyAllowCategoryFlags(cfg *gate.Config, names []string) error {
	for _, name := range names {
		cat, ok := validCategories[name]
		if !ok {
			return fmt.Errorf("--allow-category: unknown category %q", name)
		}
		cfg.Categories[cat] = gate.ActionAllow
	}
	return nil
}

// ApplyAllowFlags implements repeatable --allow <spec> flags. Spec is
// "<tool>:<rest>": for shell, rest is a comma-separated token list; for
// any other tool, rest is an extended regular expression.
func ApplyAllowFlags(cfg *gate.Config, specs []string) error {
	if len(specs) > MaxSessionAllowFlags {
		return fmt.Errorf("--allow: at most %d entries are accepted per process, got %d", MaxSessionAllowFlags, len(specs))
	}
	for _, spec := range specs {
		entry, err := parseAllowSpec(spec)
		if err != nil {
			return err
		}
		if entry.Kind == gate.EntryKindShellPrefix {
			cfg.ShellAllowlist = append(cfg.ShellAllowlist, entry)
		} else {
			cfg.RegexAllowlist = append(cfg.RegexAllowlist, entry)
		}
	}
	return nil
}

func parseAllowSpec(spec string) (gate.AllowlistEntry, error) {
	tool, rest, ok := strings.Cut(spec, ":")
	if !ok || tool == "" || rest == "" {
		return gate.AllowlistEntry{}, fmt.Errorf("--allow: malformed spec %q, want <tool>:<rest>", spec)
	}

	if tool == "shell" {
		tokens := strings.Split(rest, ",")
		for i, t := range tokens {
			tokens[i] = strings.TrimSpace(t)
		}
		if len(tokens) == 0 || (len(tokens) == 1 && tokens[0] == "") {
			return gate.AllowlistEntry{}, fmt.Errorf("--allow: shell spec %q has no tokens", spec)
		}
		return gate.AllowlistEntry{
			Kind:   gate.EntryKindShellPrefix,
			Prefix: tokens,
		}, nil
	}

	compiled, err := regexp.Compile(rest)
	if err != nil {
		return gate.AllowlistEntry{}, fmt.Errorf("--allow: invalid pattern for tool %q: %w", tool, err)
	}
	return gate.AllowlistEntry{
		Kind:    gate.EntryKindRegex,
		Tool:    tool,
		Pattern: compiled,
		Source:  rest,
	}, nil
}
