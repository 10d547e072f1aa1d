// Package gateconfig loads approval-gate configuration from a host
// config file and from CLI flags, and applies both on top of a
// gate.Config built with gate.NewConfig.
package gateconfig

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the host config file's approval_gates object.
// gopkg.in/yaml.v3 accepts well-formed JSON documents too, so one
// parser serves both the JSON and YAML config files the host may use.
type fileConfig struct {
	ApprovalGates *approvalGatesFile `yaml:"approval_gates"`
}

type approvalGatesFile struct {
	Enabled    *bool                `yaml:"enabled"`
	Categories map[string]string    `yaml:"categories"`
	Allowlist  []allowlistEntryFile `yaml:"allowlist"`
}

type allowlistEntryFile struct {
	Tool    string   `yaml:"tool"`
	Pattern string   `yaml:"pattern,omitempty"`
	Command []string `yaml:"command,omitempty"`
	Shell   string   `yaml:"shell,omitempty"`
}

var validActions = map[string]gate.Action{
	"allow": gate.ActionAllow,
	"gate":  gate.ActionGate,
	"deny":  gate.ActionDeny,
}

var validCategories = map[string]gate.Category{
	string(gate.CategoryFileRead):      gate.CategoryFileRead,
	string(gate.CategoryFileWrite):     gate.CategoryFileWrite,
	string(gate.CategoryShell):         gate.CategoryShell,
	string(gate.CategoryNetwork):       gate.CategoryNetwork,
	string(gate.CategoryMemory):        gate.CategoryMemory,
	string(gate.CategorySubagent):      gate.CategorySubagent,
	string(gate.CategoryMCP):           gate.CategoryMCP,
	string(gate.CategoryPythonDynamic): gate.CategoryPythonDynamic,
}

var validDialects = map[string]shellparse.Dialect{
	"":           "",
	"posix":      shellparse.DialectPOSIX,
	"cmd":        shellparse.DialectCmd,
	"powershell": shellparse.DialectPowerShell,
}

// LoadFile loads approval-gate configuration from path and layers it
// onto cfg. Any failure — an unreadable file, malformed YAML/JSON, or
// an unknown value — is logged and the corresponding setting is left at
// its current default. The engine never fails open on a config error.
func LoadFile(cfg *gate.Config, path string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gateconfig")

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("could not read approval-gate config, using defaults", "path", path, "error", err)
		return
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("could not parse approval-gate config, using defaults", "path", path, "error", err)
		return
	}
	if parsed.ApprovalGates == nil {
		return
	}

	applyFileConfig(cfg, parsed.ApprovalGates, logger)
}

func applyFileConfig(cfg *gate.Config, fc *approvalGatesFile, logger *slog.Logger) {
	if fc.Enabled != nil {
		cfg.MasterEnable = *fc.Enabled
	}

	for name, actionName := range fc.Categories {
		cat, ok := validCategories[name]
		if !ok {
			logger.Warn("unknown category in config, ignored", "category", name)
			continue
		}
		action, ok := validActions[actionName]
		if !ok {
			logger.Warn("invalid action for category, ignored", "category", name, "action", actionName)
			continue
		}
		cfg.Categories[cat] = action
	}

	for _, e := range fc.Allowlist {
		entry, err := toAllowlistEntry(e)
		if err != nil {
			logger.Warn("invalid allowlist entry, ignored", "tool", e.Tool, "error", err)
			continue
		}
		if entry.Kind == gate.EntryKindRegex && entry.Pattern == nil {
			logger.Warn("allowlist pattern failed to compile, entry retained but will never match", "tool", e.Tool, "pattern", e.Pattern)
		}
		if entry.Kind == gate.EntryKindShellPrefix {
			cfg.ShellAllowlist = append(cfg.ShellAllowlist, entry)
		} else {
			cfg.RegexAllowlist = append(cfg.RegexAllowlist, entry)
		}
	}
}

func toAllowlistEntry(e allowlistEntryFile) (gate.AllowlistEntry, error) {
	if e.Tool == "shell" {
		if len(e.Command) == 0 {
			return gate.AllowlistEntry{}, fmt.Errorf("shell allowlist entry has an empty command array")
		}
		dialect, ok := validDialects[e.Shell]
		if !ok {
			return gate.AllowlistEntry{}, fmt.Errorf("unknown shell dialect %q", e.Shell)
		}
		return gate.AllowlistEntry{
			Kind:    gate.EntryKindShellPrefix,
			Prefix:  append([]string(nil), e.Command...),
			Dialect: dialect,
		}, nil
	}

	if e.Tool == "" {
		return gate.AllowlistEntry{}, fmt.Errorf("allowlist entry missing tool")
	}
	if e.Pattern == "" {
		return gate.AllowlistEntry{}, fmt.Errorf("allowlist entry for %q missing pattern", e.Tool)
	}

	// A pattern that fails to compile is retained as invalid-and-skipped
	// (Pattern == nil) rather than aborting config parsing.
	compiled, err := regexp.Compile(e.Pattern)
	if err != nil {
		return gate.AllowlistEntry{
			Kind:   gate.EntryKindRegex,
			Tool:   e.Tool,
			Source: e.Pattern,
		}, nil
	}
	return gate.AllowlistEntry{
		Kind:    gate.EntryKindRegex,
		Tool:    e.Tool,
		Pattern: compiled,
		Source:  e.Pattern,
	}, nil
}
