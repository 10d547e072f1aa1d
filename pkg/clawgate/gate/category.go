package gate

import "encoding/json"

// categoryDirective is the metadata field a dynamic (unrecognised) tool
// may set on its own arguments document to self-declare a category. It
// is honoured only if present and parses to one of the known Category
// values — anything else is ignored and the call falls back to
// CategoryPythonDynamic.
const categoryDirective = "__gate_category"

var knownCategories = map[Category]bool{
	CategoryFileRead:      true,
	CategoryFileWrite:     true,
	CategoryShell:         true,
	CategoryNetwork:       true,
	CategoryMemory:        true,
	CategorySubagent:      true,
	CategoryMCP:           true,
	CategoryPythonDynamic: true,
}

// ResolveCategory maps a tool call to its category: a fixed-table lookup
// by name, falling back to the dynamic category for unknown names. An
// unknown name may self-declare its category via categoryDirective; that
// declaration is honoured only if the arguments document parses as JSON
// and the declared value is a known category.
func (c *Config) ResolveCategory(call ToolCall) Category {
	if cat, ok := c.CategoryOf[call.Name]; ok {
		return cat
	}

	if len(call.Arguments) > 0 {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(call.Arguments, &probe); err == nil {
			if raw, ok := probe[categoryDirective]; ok {
				var declared Category
				if err := json.Unmarshal(raw, &declared); err == nil && knownCategories[declared] {
					return declared
				}
			}
		}
	}

	return CategoryPythonDynamic
}
