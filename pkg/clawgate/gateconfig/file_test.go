package gateconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFile_BasicOverrides(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
approval_gates:
  enabled: true
  categories:
    shell: allow
    network: deny
  allowlist:
    - tool: shell
      command: ["git", "status"]
    - tool: read_file
      pattern: "^/tmp/.*"
`)
	cfg := gate.NewConfig()
	LoadFile(cfg, path, nil)

	if cfg.Categories[gate.CategoryShell] != gate.ActionAllow {
		t.Errorf("shell category = %v, want allow", cfg.Categories[gate.CategoryShell])
	}
	if cfg.Categories[gate.CategoryNetwork] != gate.ActionDeny {
		t.Errorf("network category = %v, want deny", cfg.Categories[gate.CategoryNetwork])
	}
	if len(cfg.ShellAllowlist) != 1 {
		t.Fatalf("expected 1 shell allowlist entry, got %d", len(cfg.ShellAllowlist))
	}
	if len(cfg.RegexAllowlist) != 1 {
		t.Fatalf("expected 1 regex allowlist entry, got %d", len(cfg.RegexAllowlist))
	}
}

func TestLoadFile_UnreadableFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	cfg := gate.NewConfig()
	before := cfg.MasterEnable
	LoadFile(cfg, "/nonexistent/path/config.yaml", nil)
	if cfg.MasterEnable != before {
		t.Error("an unreadable config file must not change any setting")
	}
}

func TestLoadFile_MalformedYAMLFallsBack(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "{ not: valid: yaml: [")
	cfg := gate.NewConfig()
	LoadFile(cfg, path, nil)
	if len(cfg.ShellAllowlist) != 0 || len(cfg.RegexAllowlist) != 0 {
		t.Error("malformed config must leave allowlists untouched")
	}
}

func TestLoadFile_EmptyShellCommandRejected(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
approval_gates:
  allowlist:
    - tool: shell
      command: []
`)
	cfg := gate.NewConfig()
	LoadFile(cfg, path, nil)
	if len(cfg.ShellAllowlist) != 0 {
		t.Error("an empty shell command array must be rejected")
	}
}

func TestLoadFile_UnknownCategoryAndActionIgnored(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
approval_gates:
  categories:
    not-a-category: allow
    shell: not-a-real-action
`)
	cfg := gate.NewConfig()
	before := cfg.Categories[gate.CategoryShell]
	LoadFile(cfg, path, nil)
	if cfg.Categories[gate.CategoryShell] != before {
		t.Error("an invalid action value must be ignored, not applied")
	}
}

func TestLoadFile_InvalidRegexRetainedAndSkipped(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
approval_gates:
  allowlist:
    - tool: read_file
      pattern: "(unterminated"
`)
	cfg := gate.NewConfig()
	LoadFile(cfg, path, nil)
	if len(cfg.RegexAllowlist) != 1 {
		t.Fatalf("expected the invalid entry to be retained, got %d entries", len(cfg.RegexAllowlist))
	}
	if cfg.RegexAllowlist[0].Pattern != nil {
		t.Error("an entry whose pattern failed to compile must have a nil Pattern")
	}
}
