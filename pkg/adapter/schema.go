// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"fmt"
	"strings"
)

// defsRefPrefix is the only $ref format supported for inlining.
const defsRefPrefix = "#/$defs/"

// ConvertSchema converts a module JSON Schema to an MCP-compatible input
// schema:
//   - empty schemas become {"type": "object", "properties": {}}
//   - $ref entries against $defs are inlined recursively, $defs is stripped
//   - the root level is guaranteed to carry "type": "object"
//
// The input map is never modified; the result is an independent copy.
func ConvertSchema(schema map[string]any) (map[string]any, error) {
	if len(schema) == 0 {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}

	var result map[string]any
	if defs, ok := schema["$defs"].(map[string]any); ok {
		inlined, err := inlineRefs(schema, defs, nil)
		if err != nil {
			return nil, err
		}
		result = inlined.(map[string]any)
		delete(result, "$defs")
	} else {
		result = deepCopyValue(schema).(map[string]any)
	}

	ensureObjectType(result)
	return result, nil
}

// inlineRefs walks the schema replacing every $ref with its definition.
// seen tracks the $ref paths on the current resolution chain so circular
// definitions fail instead of recursing forever.
func inlineRefs(value any, defs map[string]any, seen map[string]struct{}) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if refPath, ok := v["$ref"].(string); ok {
			if _, circular := seen[refPath]; circular {
				return nil, fmt.Errorf("circular $ref detected: %s", refPath)
			}
			resolved, err := resolveRef(refPath, defs)
			if err != nil {
				return nil, err
			}
			branch := make(map[string]struct{}, len(seen)+1)
			for k := range seen {
				branch[k] = struct{}{}
			}
			branch[refPath] = struct{}{}
			return inlineRefs(resolved, defs, branch)
		}

		result := make(map[string]any, len(v))
		for key, child := range v {
			if key == "$defs" {
				continue
			}
			inlined, err := inlineRefs(child, defs, seen)
			if err != nil {
				return nil, err
			}
			result[key] = inlined
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			inlined, err := inlineRefs(item, defs, seen)
			if err != nil {
				return nil, err
			}
			result[i] = inlined
		}
		return result, nil

	default:
		return v, nil
	}
}

func resolveRef(refPath string, defs map[string]any) (any, error) {
	if !strings.HasPrefix(refPath, defsRefPrefix) {
		return nil, fmt.Errorf("unsupported $ref format: %s", refPath)
	}
	name := refPath[len(defsRefPrefix):]
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("definition not found: %s", name)
	}
	return deepCopyValue(def), nil
}

func ensureObjectType(schema map[string]any) {
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	if _, hasProps := schema["properties"]; hasProps && schema["type"] != "object" {
		schema["type"] = "object"
	}
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, child := range v {
			result[key] = deepCopyValue(child)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = deepCopyValue(item)
		}
		return result
	default:
		return v
	}
}
