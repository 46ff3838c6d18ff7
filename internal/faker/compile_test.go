package faker

import (
	"fmt"
	"reflect"
	"testing"
)

// testRegistry builds a deterministic registry for compiler tests.
func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	calls := 0

	register := func(path string, fn GeneratorFunc) {
		if err := r.Register(path, fn); err != nil {
			t.Fatalf("Failed to register %s: %v", path, err)
		}
	}

	register("test.constant", func([]interface{}) (interface{}, error) {
		return "generated", nil
	})
	register("test.counter", func([]interface{}) (interface{}, error) {
		calls++
		return calls, nil
	})
	register("test.echo", func(args []interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("echo needs an argument")
		}
		return args[0], nil
	})
	register("test.failing", func([]interface{}) (interface{}, error) {
		return nil, fmt.Errorf("boom")
	})

	return r
}

// TestCompileLiterals tests that non-macro values pass through untouched
func TestCompileLiterals(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"name":   "Alice",
		"age":    float64(30),
		"active": true,
	}
	result := Compile(template, reg)

	if result["name"] != "Alice" || result["age"] != float64(30) || result["active"] != true {
		t.Errorf("Literals changed: %v", result)
	}
}

// TestCompileSkipsTopLevelID tests that "id" is only skipped at the top level
func TestCompileSkipsTopLevelID(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"id": "should-be-dropped",
		"owner": map[string]interface{}{
			"id": "nested-stays",
		},
	}
	result := Compile(template, reg)

	if _, present := result["id"]; present {
		t.Error("Expected top-level id to be skipped")
	}
	owner, ok := result["owner"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected nested object, got %T", result["owner"])
	}
	if owner["id"] != "nested-stays" {
		t.Errorf("Expected nested id preserved, got %v", owner["id"])
	}
}

// TestCompileResolvesMacros tests macro substitution with arguments
func TestCompileResolvesMacros(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"value": "$test.constant",
		"num":   "$test.echo(42)",
	}
	result := Compile(template, reg)

	if result["value"] != "generated" {
		t.Errorf("Expected generated, got %v", result["value"])
	}
	if result["num"] != float64(42) {
		t.Errorf("Expected 42, got %v", result["num"])
	}
}

// TestCompileUnknownMacroFallsBack tests the literal fallback on lookup failure
func TestCompileUnknownMacroFallsBack(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"bad":     "$nope.nothing",
		"failing": "$test.failing",
	}
	result := Compile(template, reg)

	if result["bad"] != "$nope.nothing" {
		t.Errorf("Expected literal macro kept, got %v", result["bad"])
	}
	if result["failing"] != "$test.failing" {
		t.Errorf("Expected literal macro kept on invocation error, got %v", result["failing"])
	}
}

// TestCompileArraysElementWise tests that array elements resolve independently
func TestCompileArraysElementWise(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"tags": []interface{}{"$test.counter", "$test.counter", "$test.counter"},
	}
	result := Compile(template, reg)

	tags, ok := result["tags"].([]interface{})
	if !ok {
		t.Fatalf("Expected array, got %T", result["tags"])
	}
	if len(tags) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(tags))
	}
	if tags[0] == tags[1] || tags[1] == tags[2] {
		t.Errorf("Expected distinct values per element, got %v", tags)
	}
}

// TestCompileNestedObjects tests macro resolution inside nested objects
func TestCompileNestedObjects(t *testing.T) {
	reg := testRegistry(t)

	template := map[string]interface{}{
		"address": map[string]interface{}{
			"city": "$test.constant",
			"zip":  "12345",
		},
	}
	result := Compile(template, reg)

	address, ok := result["address"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object, got %T", result["address"])
	}
	if address["city"] != "generated" {
		t.Errorf("Expected generated, got %v", address["city"])
	}
	if address["zip"] != "12345" {
		t.Errorf("Expected literal zip, got %v", address["zip"])
	}
}

// TestTemplateKeys tests top-level key extraction in document order
func TestTemplateKeys(t *testing.T) {
	raw := []byte(`{"zeta": 1, "alpha": {"inner": 2}, "mid": [1, 2], "last": "$x.y"}`)

	keys := TemplateKeys(raw)
	want := []string{"zeta", "alpha", "mid", "last"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected %v, got %v", want, keys)
	}
}

// TestTemplateKeysNonObject tests that non-object documents yield no keys
func TestTemplateKeysNonObject(t *testing.T) {
	if keys := TemplateKeys([]byte(`"$mockData"`)); keys != nil {
		t.Errorf("Expected nil for non-object, got %v", keys)
	}
	if keys := TemplateKeys(nil); keys != nil {
		t.Errorf("Expected nil for empty input, got %v", keys)
	}
}
