package gate

import (
	"runtime"

	"github.com/wrenlabs/clawgate/pkg/clawgate/shellparse"
)

// Evaluate runs the full policy pipeline for one tool call against
// the host's current platform default shell dialect.
func (c *Config) Evaluate(call ToolCall) Result {
	return c.evaluateWithGOOS(call, runtime.GOOS)
}

// evaluateWithGOOS is the testable entry point: goos selects the default
// shell dialect when the call doesn't declare one.
func (c *Config) evaluateWithGOOS(call ToolCall, goos string) Result {
	// Step 1: master enable.
	if !c.MasterEnable {
		return Result{Outcome: Allowed}
	}

	// Step 2: category resolution.
	category := c.ResolveCategory(call)

	// Step 3: category default action.
	action, ok := c.Categories[category]
	if !ok {
		action = ActionGate
	}
	switch action {
	case ActionAllow:
		return Result{Outcome: Allowed, Category: category}
	case ActionDeny:
		return Result{Outcome: Denied, Category: category}
	}

	// Step 4: allowlist match (category is ActionGate from here on).
	var parsedShell shellparse.ParsedShellCommand
	isShell := category == CategoryShell
	if isShell {
		matched, parsed, _ := matchShellAllowlist(c, call, goos)
		parsedShell = parsed
		if matched {
			return Result{Outcome: Allowed, Category: category}
		}
	} else {
		if matchRegexAllowlist(c, call) {
			return Result{Outcome: Allowed, Category: category}
		}
	}

	// Step 5: rate limit.
	if limited, retryAfter := c.checkRateLimit(call.Name); limited {
		return Result{Outcome: RateLimited, Category: category, RetryAfter: retryAfter}
	}

	// Step 6: prompt. A process with no Prompter (a subagent with no
	// terminal of its own and no proxy wired in) cannot prompt at all —
	// that is always Aborted, never a silent allow.
	if c.Prompter == nil {
		return Result{Outcome: Aborted, Category: category}
	}
	outcome, err := c.Prompter.Prompt(call, category)
	if err != nil {
		outcome = Aborted
	}

	switch outcome {
	case Denied:
		// Step 7: update denial tracker.
		c.recordDenial(call.Name)
		return Result{Outcome: Denied, Category: category}

	case Allowed:
		// Step 8: zero the denial tracker.
		c.clearDenial(call.Name)
		return Result{Outcome: Allowed, Category: category}

	case AllowedAlways:
		c.clearDenial(call.Name)
		if isShell {
			c.addShellAllowAlways(parsedShell)
		} else {
			c.addRegexAllowAlways(call)
		}
		return Result{Outcome: AllowedAlways, Category: category}

	default:
		return Result{Outcome: Aborted, Category: category}
	}
}
