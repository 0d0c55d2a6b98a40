// cmd/tools/worker-generator/schema.go
package main

import (
	"fmt"
	"sort"
	"strings"
)

// parseSchema extracts properties from a JSON schema object
func parseSchema(schemaObj interface{}) map[string]interface{} {
	if schemaMap, ok := schemaObj.(map[string]interface{}); ok {
		if properties, ok := schemaMap["properties"].(map[string]interface{}); ok {
			return properties
		}
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// generateStructFields renders one struct field per schema property, sorted
// by property name so repeated runs produce identical files.
func generateStructFields(properties map[string]interface{}) string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []string
	for _, prop := range names {
		details, ok := properties[prop].(map[string]interface{})
		if !ok {
			continue
		}
		field := fmt.Sprintf("\t%s %s `json:\"%s\"`", fieldName(prop), goTypeFromJSONType(details["type"]), prop)
		if desc, ok := details["description"].(string); ok && desc != "" {
			field += " // " + desc
		}
		fields = append(fields, field)
	}
	return strings.Join(fields, "\n")
}

// fieldName turns snake_case, kebab-case and camelCase property names into an
// exported Go identifier.
func fieldName(prop string) string {
	parts := strings.FieldsFunc(prop, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		switch strings.ToLower(p) {
		case "id", "url", "api", "pdf", "arn":
			b.WriteString(strings.ToUpper(p))
		default:
			b.WriteString(upperFirst(p))
		}
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// packageName is the Go package for a task directory: dashes removed.
func packageName(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}
