package services

import (
	"testing"

	"github.com/mockforge/mockforge/internal/faker"
)

// TestEncodeRecordBlobOrder tests the stable field order of stored blobs
func TestEncodeRecordBlobOrder(t *testing.T) {
	data := map[string]interface{}{
		"zebra": 1,
		"id":    "7",
		"alpha": 2,
		"extra": 3,
	}
	templateKeys := []string{"zebra", "alpha"}

	blob, err := EncodeRecordBlob(data, templateKeys)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `{"id":"7","zebra":1,"alpha":2,"extra":3}`
	if string(blob) != want {
		t.Errorf("Expected %s, got %s", want, blob)
	}
}

// TestOrderRecordDataDropsUnknownFields tests the collection view ordering
func TestOrderRecordDataDropsUnknownFields(t *testing.T) {
	data := map[string]interface{}{
		"id":     "1",
		"name":   "Alice",
		"email":  "a@example.com",
		"rogue":  "dropped",
		"absent": nil,
	}
	templateKeys := []string{"email", "name", "missing"}

	ordered := OrderRecordData(data, templateKeys)

	wantKeys := []string{"id", "email", "name"}
	gotKeys := ordered.Keys()
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("Expected keys %v, got %v", wantKeys, gotKeys)
	}
	for i, key := range wantKeys {
		if gotKeys[i] != key {
			t.Errorf("Key %d: expected %s, got %s", i, key, gotKeys[i])
		}
	}
}

// TestListOrderedRecordData tests the full ordered listing path
func TestListOrderedRecordData(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedResource(t, db, true)

	if err := Generate(db, reg, project.ID, resource.ID, 3); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	records, err := ListOrderedRecordData(db, resource)
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	for i, record := range records {
		keys := record.Keys()
		if len(keys) == 0 || keys[0] != "id" {
			t.Errorf("Record %d: expected id first, got %v", i, keys)
		}
	}

	// Template order is name, email, score as declared at creation
	keys := records[0].Keys()
	want := []string{"id", "name", "email", "score"}
	if len(keys) != len(want) {
		t.Fatalf("Expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

// TestFindRecordByExternalID tests lookup and the not-found path
func TestFindRecordByExternalID(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedResource(t, db, true)

	if err := Generate(db, reg, project.ID, resource.ID, 2); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	record, err := FindRecordByExternalID(db, resource.ID, "2")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if record.ExternalID != "2" {
		t.Errorf("Expected external id 2, got %s", record.ExternalID)
	}

	if _, err := FindRecordByExternalID(db, resource.ID, "99"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
