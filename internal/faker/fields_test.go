package faker

import (
	"reflect"
	"testing"
)

// TestFlattenSimpleField tests macro string materialization
func TestFlattenSimpleField(t *testing.T) {
	fields := []TemplateField{
		{Key: "email", Type: FieldSimple, Module: "internet", Method: "email"},
	}

	out := Flatten(fields)
	if out["email"] != "$internet.email" {
		t.Errorf("Expected $internet.email, got %v", out["email"])
	}
}

// TestFlattenObjectField tests nested object materialization
func TestFlattenObjectField(t *testing.T) {
	fields := []TemplateField{
		{
			Key:  "address",
			Type: FieldObject,
			Fields: []TemplateField{
				{Key: "city", Type: FieldSimple, Module: "address", Method: "city"},
				{Key: "zip", Type: FieldSimple, Module: "address", Method: "zipCode"},
			},
		},
	}

	out := Flatten(fields)
	address, ok := out["address"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object, got %T", out["address"])
	}
	if address["city"] != "$address.city" || address["zip"] != "$address.zipCode" {
		t.Errorf("Unexpected nested template: %v", address)
	}
}

// TestFlattenArraySimple tests macro duplication with the default count
func TestFlattenArraySimple(t *testing.T) {
	fields := []TemplateField{
		{
			Key:       "tags",
			Type:      FieldArray,
			ArrayType: ArraySimple,
			Items:     &TemplateField{Module: "lorem", Method: "word"},
		},
	}

	out := Flatten(fields)
	tags, ok := out["tags"].([]interface{})
	if !ok {
		t.Fatalf("Expected array, got %T", out["tags"])
	}
	if len(tags) != DefaultArrayCount {
		t.Errorf("Expected %d elements, got %d", DefaultArrayCount, len(tags))
	}
	for _, tag := range tags {
		if tag != "$lorem.word" {
			t.Errorf("Expected $lorem.word, got %v", tag)
		}
	}
}

// TestFlattenArrayCountClamped tests the cardinality cap
func TestFlattenArrayCountClamped(t *testing.T) {
	fields := []TemplateField{
		{
			Key:       "tags",
			Type:      FieldArray,
			ArrayType: ArraySimple,
			Count:     500,
			Items:     &TemplateField{Module: "lorem", Method: "word"},
		},
	}

	out := Flatten(fields)
	tags := out["tags"].([]interface{})
	if len(tags) != MaxArrayCount {
		t.Errorf("Expected clamp to %d, got %d", MaxArrayCount, len(tags))
	}
}

// TestFlattenArrayObject tests object-item arrays
func TestFlattenArrayObject(t *testing.T) {
	fields := []TemplateField{
		{
			Key:       "reviews",
			Type:      FieldArray,
			ArrayType: ArrayObject,
			Count:     2,
			Items: &TemplateField{
				Fields: []TemplateField{
					{Key: "author", Type: FieldSimple, Module: "name", Method: "fullName"},
				},
			},
		},
	}

	out := Flatten(fields)
	reviews, ok := out["reviews"].([]interface{})
	if !ok {
		t.Fatalf("Expected array, got %T", out["reviews"])
	}
	if len(reviews) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(reviews))
	}
	want := map[string]interface{}{"author": "$name.fullName"}
	for _, review := range reviews {
		if !reflect.DeepEqual(review, want) {
			t.Errorf("Expected %v, got %v", want, review)
		}
	}
}

// TestFlattenJSONKeepsFieldOrder tests declared-order materialization
func TestFlattenJSONKeepsFieldOrder(t *testing.T) {
	fields := []TemplateField{
		{Key: "zebra", Type: FieldSimple, Module: "lorem", Method: "word"},
		{Key: "alpha", Type: FieldSimple, Module: "lorem", Method: "word"},
		{Key: "middle", Type: FieldSimple, Module: "lorem", Method: "word"},
	}

	doc, err := FlattenJSON(fields)
	if err != nil {
		t.Fatalf("FlattenJSON failed: %v", err)
	}
	want := []string{"zebra", "alpha", "middle"}
	if got := TemplateKeys(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected keys %v, got %v", want, got)
	}
}

// TestFlattenSkipsIncompleteFields tests that malformed nodes are dropped
func TestFlattenSkipsIncompleteFields(t *testing.T) {
	fields := []TemplateField{
		{Key: "", Type: FieldSimple, Module: "lorem", Method: "word"},
		{Key: "nomethod", Type: FieldSimple, Module: "lorem"},
		{Key: "noitems", Type: FieldArray, ArrayType: ArraySimple},
	}

	out := Flatten(fields)
	if len(out) != 0 {
		t.Errorf("Expected empty template, got %v", out)
	}
}

// TestToSlug tests slug derivation
func TestToSlug(t *testing.T) {
	cases := map[string]string{
		"Blog Posts":  "blog-posts",
		"userProfile": "user-profile",
		"orders":      "orders",
	}
	for input, want := range cases {
		if got := ToSlug(input); got != want {
			t.Errorf("ToSlug(%q): expected %q, got %q", input, want, got)
		}
	}
}

// TestValidSlug tests slug validation
func TestValidSlug(t *testing.T) {
	valid := []string{"posts", "blog-posts", "v2-items", "a1"}
	for _, s := range valid {
		if !ValidSlug(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}

	invalid := []string{"", "Blog", "two words", "trailing-", "-leading", "under_score"}
	for _, s := range invalid {
		if ValidSlug(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}
