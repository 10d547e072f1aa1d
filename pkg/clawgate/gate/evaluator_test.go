package gate

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

type scriptedPrompter struct {
	outcomes []Outcome
	i        int
	calls    []ToolCall
}

func (p *scriptedPrompter) Prompt(call ToolCall, _ Category) (Outcome, error) {
	p.calls = append(p.calls, call)
	if p.i >= len(p.outcomes) {
		return Aborted, nil
	}
	o := p.outcomes[p.i]
	p.i++
	return o, nil
}

func shellCall(command string) ToolCall {
	args, _ := json.Marshal(map[string]string{"command": command})
	return ToolCall{ID: "1", Name: "shell", Arguments: args}
}

func TestEvaluate_MasterDisableAllowsEverything(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.MasterEnable = false
	res := cfg.evaluateWithGOOS(shellCall("rm -rf /"), "linux")
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed", res.Outcome)
	}
}

func TestEvaluate_AllowCategoryShortCircuits(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Categories[CategoryFileRead] = ActionAllow
	call := ToolCall{Name: "read_file", Arguments: json.RawMessage(`{"file_path":"/etc/shadow"}`)}
	res := cfg.Evaluate(call)
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed", res.Outcome)
	}
}

func TestEvaluate_DenyCategoryShortCircuits(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Categories[CategoryShell] = ActionDeny
	res := cfg.Evaluate(shellCall("git status"))
	if res.Outcome != Denied {
		t.Fatalf("got %v, want Denied", res.Outcome)
	}
}

func TestEvaluate_ShellChainNeverAllowlisted(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.ShellAllowlist = append(cfg.ShellAllowlist, AllowlistEntry{
		Kind:   EntryKindShellPrefix,
		Prefix: []string{"git", "status"},
	})
	prompter := &scriptedPrompter{outcomes: []Outcome{Denied}}
	cfg.Prompter = prompter

	res := cfg.evaluateWithGOOS(shellCall("git status; rm -rf /"), "linux")
	if len(prompter.calls) != 1 {
		t.Fatalf("expected the chained command to reach the prompt, got %d prompt calls", len(prompter.calls))
	}
	if res.Outcome != Denied {
		t.Fatalf("got %v, want Denied", res.Outcome)
	}
}

func TestEvaluate_ShellAllowlistMatch(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.ShellAllowlist = append(cfg.ShellAllowlist, AllowlistEntry{
		Kind:   EntryKindShellPrefix,
		Prefix: []string{"git", "status"},
	})
	res := cfg.evaluateWithGOOS(shellCall("git status"), "linux")
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed", res.Outcome)
	}
}

func TestEvaluate_RegexAllowlistMatch(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.RegexAllowlist = append(cfg.RegexAllowlist, AllowlistEntry{
		Kind:    EntryKindRegex,
		Tool:    "web_fetch",
		Pattern: mustCompile(t, `^https://example\.com/.*$`),
	})
	call := ToolCall{Name: "web_fetch", Arguments: json.RawMessage(`{"url":"https://example.com/docs"}`)}
	res := cfg.Evaluate(call)
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed", res.Outcome)
	}
}

func TestEvaluate_InvalidRegexEntrySkipped(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.RegexAllowlist = append(cfg.RegexAllowlist, AllowlistEntry{
		Kind: EntryKindRegex,
		Tool: "web_fetch",
		// Pattern is nil: compilation "failed" at load time.
	})
	cfg.Prompter = &scriptedPrompter{outcomes: []Outcome{Denied}}
	call := ToolCall{Name: "web_fetch", Arguments: json.RawMessage(`{"url":"https://example.com/docs"}`)}
	res := cfg.Evaluate(call)
	if res.Outcome != Denied {
		t.Fatalf("invalid entry must never match; got %v", res.Outcome)
	}
}

func TestEvaluate_NoPrompterAborts(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	res := cfg.evaluateWithGOOS(shellCall("git status"), "linux")
	if res.Outcome != Aborted {
		t.Fatalf("got %v, want Aborted", res.Outcome)
	}
}

func TestEvaluate_DenialBackoffThenRateLimited(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	prompter := &scriptedPrompter{outcomes: []Outcome{Denied, Denied, Denied}}
	cfg.Prompter = prompter

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixed }
	defer func() { now = restore }()

	for i := 0; i < 3; i++ {
		res := cfg.evaluateWithGOOS(shellCall("echo hi"), "linux")
		if res.Outcome != Denied {
			t.Fatalf("denial %d: got %v, want Denied", i+1, res.Outcome)
		}
	}

	tr := cfg.Denials["shell"]
	if tr == nil {
		t.Fatal("expected a denial tracker for 'shell'")
	}
	wantBackoff := fixed.Add(5 * time.Second)
	if !tr.BackoffUntil.Equal(wantBackoff) {
		t.Fatalf("backoff_until = %v, want %v", tr.BackoffUntil, wantBackoff)
	}

	res := cfg.evaluateWithGOOS(shellCall("echo hi"), "linux")
	if res.Outcome != RateLimited {
		t.Fatalf("4th evaluation within backoff window: got %v, want RateLimited", res.Outcome)
	}
	if len(prompter.calls) != 3 {
		t.Fatalf("rate-limited evaluation must not prompt; got %d prompt calls", len(prompter.calls))
	}
}

func TestEvaluate_AllowedAlways_ShellSynthesizesEntry(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Prompter = &scriptedPrompter{outcomes: []Outcome{AllowedAlways}}

	res := cfg.evaluateWithGOOS(shellCall("git status"), "linux")
	if res.Outcome != AllowedAlways {
		t.Fatalf("got %v, want AllowedAlways", res.Outcome)
	}
	if len(cfg.ShellAllowlist) != 1 {
		t.Fatalf("expected one synthesised shell entry, got %d", len(cfg.ShellAllowlist))
	}
	entry := cfg.ShellAllowlist[0]
	want := []string{"git", "status"}
	if len(entry.Prefix) != len(want) || entry.Prefix[0] != want[0] || entry.Prefix[1] != want[1] {
		t.Fatalf("synthesised prefix = %v, want %v", entry.Prefix, want)
	}
	if entry.Dialect != shellparse.DialectPOSIX {
		t.Fatalf("synthesised dialect = %v, want posix", entry.Dialect)
	}

	// Idempotence: evaluating the now-allowlisted call again matches directly.
	res2 := cfg.evaluateWithGOOS(shellCall("git status"), "linux")
	if res2.Outcome != Allowed {
		t.Fatalf("second evaluation: got %v, want Allowed", res2.Outcome)
	}
}

func TestEvaluate_AllowedAlways_RegexSynthesizesEntry(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Prompter = &scriptedPrompter{outcomes: []Outcome{AllowedAlways}}
	call := ToolCall{Name: "write_file", Arguments: json.RawMessage(`{"file_path":"/tmp/notes.txt"}`)}

	res := cfg.Evaluate(call)
	if res.Outcome != AllowedAlways {
		t.Fatalf("got %v, want AllowedAlways", res.Outcome)
	}
	if len(cfg.RegexAllowlist) != 1 {
		t.Fatalf("expected one synthesised regex entry, got %d", len(cfg.RegexAllowlist))
	}

	res2 := cfg.Evaluate(call)
	if res2.Outcome != Allowed {
		t.Fatalf("second evaluation: got %v, want Allowed", res2.Outcome)
	}

	other := ToolCall{Name: "write_file", Arguments: json.RawMessage(`{"file_path":"/tmp/other.txt"}`)}
	res3 := cfg.evaluateWithGOOS(other, "linux")
	if res3.Outcome != Aborted {
		t.Fatalf("a different path must not match the anchored regex; got %v", res3.Outcome)
	}
}

func TestEvaluate_DynamicToolSelfDeclaresCategory(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.Categories[CategoryNetwork] = ActionAllow
	args, _ := json.Marshal(map[string]any{"__gate_category": "network", "url": "https://example.com"})
	call := ToolCall{Name: "custom_fetch_tool", Arguments: args}
	res := cfg.Evaluate(call)
	if res.Category != CategoryNetwork {
		t.Fatalf("category = %v, want network", res.Category)
	}
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed", res.Outcome)
	}
}

func TestEvaluate_DynamicToolBadDirectiveFallsBack(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	args, _ := json.Marshal(map[string]any{"__gate_category": "not-a-real-category"})
	call := ToolCall{Name: "custom_tool", Arguments: args}
	cat := cfg.ResolveCategory(call)
	if cat != CategoryPythonDynamic {
		t.Fatalf("category = %v, want python-dynamic fallback", cat)
	}
}

func TestEvaluate_DialectOverrideBeatsGOOSDetection(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	cfg.DialectOverride = shellparse.DialectCmd
	cfg.ShellAllowlist = append(cfg.ShellAllowlist, AllowlistEntry{
		Kind:    EntryKindShellPrefix,
		Prefix:  []string{"dir"},
		Dialect: shellparse.DialectCmd,
	})

	// goos says "linux" (POSIX default), but the override pins cmd.exe,
	// so a bare "dir" call — meaningless on POSIX — must still match
	// the cmd-dialect allowlist entry.
	call := ToolCall{Name: "shell", Arguments: json.RawMessage(`{"command":"dir"}`)}
	res := cfg.evaluateWithGOOS(call, "linux")
	if res.Outcome != Allowed {
		t.Fatalf("got %v, want Allowed (dialect override should win over goos)", res.Outcome)
	}
}

func mustCompile(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("failed to compile %q: %v", pattern, err)
	}
	return re
}
