package faker

import (
	"encoding/json"
	"regexp"

	"github.com/iancoleman/strcase"
	"github.com/mockforge/mockforge/internal/utils"
)

// FieldType discriminates the template authoring variants.
type FieldType string

// ArrayType selects what an array field repeats.
type ArrayType string

const (
	FieldSimple FieldType = "simple"
	FieldObject FieldType = "object"
	FieldArray  FieldType = "array"

	ArraySimple ArrayType = "simple"
	ArrayObject ArrayType = "object"

	// DefaultArrayCount applies when an array field carries no count.
	DefaultArrayCount = 3
	// MaxArrayCount caps array materialization cardinality.
	MaxArrayCount = 10
)

// TemplateField is one node of the authoring-form schema tree. Simple fields
// name a generator module and method; object fields carry children; array
// fields repeat one item shape Count times.
type TemplateField struct {
	Key       string          `json:"key"`
	Type      FieldType       `json:"type"`
	ArrayType ArrayType       `json:"arrayType,omitempty"`
	Module    string          `json:"module,omitempty"`
	Method    string          `json:"method,omitempty"`
	Fields    []TemplateField `json:"fields,omitempty"`
	Items     *TemplateField  `json:"items,omitempty"`
	Count     int             `json:"count,omitempty"`
}

// Flatten converts an authoring tree into the materialized template form the
// compiler consumes: simple fields become "$module.method" strings, object
// fields nested objects, and array fields plain arrays with the macro or
// object shape duplicated Count times. Each duplicate resolves independently
// at compile time.
func Flatten(fields []TemplateField) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))

	for _, field := range fields {
		if value, ok := flattenField(field); ok {
			out[field.Key] = value
		}
	}

	return out
}

// FlattenJSON materializes the authoring tree as a JSON document whose
// top-level keys keep the declared field order. Stored templates drive record
// field order, so the document must not pass through a plain map.
func FlattenJSON(fields []TemplateField) ([]byte, error) {
	out := utils.NewOrderedMap()

	for _, field := range fields {
		if value, ok := flattenField(field); ok {
			out.Set(field.Key, value)
		}
	}

	return json.Marshal(out)
}

// flattenField materializes one authoring node. Incomplete nodes are skipped.
func flattenField(field TemplateField) (interface{}, bool) {
	if field.Key == "" {
		return nil, false
	}

	switch field.Type {
	case FieldSimple:
		if field.Module != "" && field.Method != "" {
			return "$" + field.Module + "." + field.Method, true
		}
	case FieldObject:
		if field.Fields != nil {
			return Flatten(field.Fields), true
		}
	case FieldArray:
		if field.Items == nil {
			return nil, false
		}
		count := clampCount(field.Count)
		switch field.ArrayType {
		case ArraySimple:
			if field.Items.Module == "" || field.Items.Method == "" {
				return nil, false
			}
			macro := "$" + field.Items.Module + "." + field.Items.Method
			values := make([]interface{}, count)
			for i := range values {
				values[i] = macro
			}
			return values, true
		case ArrayObject:
			objects := make([]interface{}, count)
			for i := range objects {
				objects[i] = Flatten(field.Items.Fields)
			}
			return objects, true
		}
	}

	return nil, false
}

func clampCount(count int) int {
	if count < 1 {
		return DefaultArrayCount
	}
	if count > MaxArrayCount {
		return MaxArrayCount
	}
	return count
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ToSlug derives a URL-safe resource name.
func ToSlug(name string) string {
	return strcase.ToKebab(name)
}

// ValidSlug reports whether a resource name is already a URL-safe slug.
func ValidSlug(name string) bool {
	return slugPattern.MatchString(name)
}
