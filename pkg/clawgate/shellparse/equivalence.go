package shellparse

// EquivalenceGroups is the cross-dialect first-token equivalence table:
// each inner slice names commands from different dialects that perform
// the same operation (e.g. "list the directory"). It is used only when
// a shell-prefix allowlist entry has no dialect tag — an entry pinned
// to a dialect must match that dialect's own verb exactly.
var EquivalenceGroups = [][]string{
	{"ls", "dir", "Get-ChildItem"},
	{"cat", "type", "Get-Content"},
	{"rm", "del", "erase", "Remove-Item"},
	{"cp", "copy", "Copy-Item"},
	{"mv", "move", "Move-Item"},
	{"pwd", "Get-Location"},
	{"echo", "Write-Output"},
	{"ps", "tasklist", "Get-Process"},
	{"clear", "cls", "Clear-Host"},
}

// EquivalentFirstTokens reports whether a and b name the same operation
// according to EquivalenceGroups, or are byte-identical.
func EquivalentFirstTokens(a, b string) bool {
	if a == b {
		return true
	}
	for _, group := range EquivalenceGroups {
		inA, inB := false, false
		for _, name := range group {
			if name == a {
				inA = true
			}
			if name == b {
				inB = true
			}
		}
		if inA && inB {
			return true
		}
	}
	return false
}
