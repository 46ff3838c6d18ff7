package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/mockforge/mockforge/internal/database"
	"github.com/mockforge/mockforge/internal/faker"
	"github.com/mockforge/mockforge/internal/models"
	"github.com/mockforge/mockforge/internal/services"
	"github.com/mockforge/mockforge/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory database with migrated models
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setupMockApp wires the dynamic mock routes the way the server does
func setupMockApp(t *testing.T, db *gorm.DB, reg *faker.Registry) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	handler := &MockAPIHandler{DB: db, Registry: reg}

	api := app.Group("/api")
	api.Get("/:projectId/:version/:resource", handler.ListRecords)
	api.Post("/:projectId/:version/:resource", handler.CreateRecord)
	api.Get("/:projectId/:version/:resource/:id", handler.GetRecord)
	api.Put("/:projectId/:version/:resource/:id", handler.UpdateRecord)
	api.Delete("/:projectId/:version/:resource/:id", handler.DeleteRecord)

	return app
}

// seedMockResource creates a project, a resource, and three generated records
func seedMockResource(t *testing.T, db *gorm.DB, reg *faker.Registry) (*models.Project, *models.Resource) {
	t.Helper()

	project, err := services.CreateProject(db, "mock-project")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	resource, err := services.CreateResource(db, project.ID, services.ResourceInput{
		Name: "users",
		Template: []byte(`{
			"name": "$name.firstName",
			"email": "$internet.email"
		}`),
		UseIncrementalIDs: true,
	})
	if err != nil {
		t.Fatalf("Failed to create resource: %v", err)
	}
	if err := services.Generate(db, reg, project.ID, resource.ID, 3); err != nil {
		t.Fatalf("Failed to generate records: %v", err)
	}
	return project, resource
}

// decodeEnvelope parses the standard error envelope
func decodeEnvelope(t *testing.T, body io.Reader) (string, int) {
	t.Helper()

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode error envelope: %v", err)
	}
	return envelope.Error.Message, envelope.Error.Status
}

// TestListRecordsOrdered tests the collection route and field ordering
func TestListRecordsOrdered(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	req := httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	// id leads, then template keys in declared order
	if !strings.HasPrefix(string(body), `[{"id":"1","name":`) {
		t.Errorf("Unexpected body shape: %.80s", body)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

// TestListRecordsShaped tests endpoint template sentinel substitution
func TestListRecordsShaped(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	_, err := services.UpdateEndpointTemplate(db, resource.ID,
		json.RawMessage(`{"items": "$mockData", "total": "$count", "page": 1}`))
	if err != nil {
		t.Fatalf("Failed to update endpoint template: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	var shaped map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&shaped); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	items, ok := shaped["items"].([]interface{})
	if !ok || len(items) != 3 {
		t.Errorf("Expected 3 items, got %v", shaped["items"])
	}
	if shaped["total"] != float64(3) {
		t.Errorf("Expected total 3, got %v", shaped["total"])
	}
	if shaped["page"] != float64(1) {
		t.Errorf("Expected literal page, got %v", shaped["page"])
	}
}

// TestListRecordsGateDisabled tests the 405 gate
func TestListRecordsGateDisabled(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	if _, err := services.UpdateMethods(db, resource.ID, map[string]bool{"allowGet": false}); err != nil {
		t.Fatalf("Failed to disable GET: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 405 {
		t.Fatalf("Expected status 405, got %d", resp.StatusCode)
	}

	message, status := decodeEnvelope(t, resp.Body)
	if message != "GET method not allowed for this resource" || status != 405 {
		t.Errorf("Unexpected envelope: %s / %d", message, status)
	}

	// GET by id is gated independently
	req = httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users/1", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected by-id route unaffected, got %d", resp.StatusCode)
	}
}

// TestGetRecordByID tests single-record retrieval
func TestGetRecordByID(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	req := httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users/2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record["id"] != "2" {
		t.Errorf("Expected id 2, got %v", record["id"])
	}

	// Unknown id
	req = httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users/99", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
	message, _ := decodeEnvelope(t, resp.Body)
	if message != "Record with id 99 not found" {
		t.Errorf("Unexpected message: %s", message)
	}
}

// TestResolveUnknownResource tests 404s for bad slugs and version mismatch
func TestResolveUnknownResource(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	req := httptest.NewRequest("GET", "/api/"+project.ID+"/v1/ghosts", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for unknown slug, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/"+project.ID+"/v9/users", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for version mismatch, got %d", resp.StatusCode)
	}
}

// TestCreateRecord tests literal preservation and fresh id assignment
func TestCreateRecord(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	body := []byte(`{"name": "Alice"}`)
	req := httptest.NewRequest("POST", "/api/"+project.ID+"/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record["id"] != "4" {
		t.Errorf("Expected next sequential id 4, got %v", record["id"])
	}
	if record["name"] != "Alice" {
		t.Errorf("Expected literal name preserved, got %v", record["name"])
	}

	count, err := services.CountRecords(db, resource.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected 4 stored records, got %d", count)
	}
}

// TestCreateRecordResolvesMacros tests server-side macro resolution in bodies
func TestCreateRecordResolvesMacros(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	body := []byte(`{"email": "$internet.email"}`)
	req := httptest.NewRequest("POST", "/api/"+project.ID+"/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	email, ok := record["email"].(string)
	if !ok || !strings.Contains(email, "@") {
		t.Errorf("Expected resolved email, got %v", record["email"])
	}
}

// TestCreateRecordValidation tests bad JSON and unknown fields
func TestCreateRecordValidation(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	req := httptest.NewRequest("POST", "/api/"+project.ID+"/v1/users",
		strings.NewReader(`{"name": `))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for bad JSON, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/"+project.ID+"/v1/users",
		strings.NewReader(`{"hobby": "golf"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for unknown field, got %d", resp.StatusCode)
	}
	message, _ := decodeEnvelope(t, resp.Body)
	if !strings.Contains(message, "Invalid fields: hobby") ||
		!strings.Contains(message, "Allowed fields: name, email") {
		t.Errorf("Unexpected message: %s", message)
	}
}

// TestUpdateRecordPinsPathID tests that the path id wins over the body id
func TestUpdateRecordPinsPathID(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, resource := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	body := []byte(`{"name": "Bob", "id": "999"}`)
	req := httptest.NewRequest("PUT", "/api/"+project.ID+"/v1/users/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record["id"] != "1" {
		t.Errorf("Expected path id pinned, got %v", record["id"])
	}
	if record["name"] != "Bob" {
		t.Errorf("Expected updated name, got %v", record["name"])
	}

	// Still addressable under the original id
	stored, err := services.FindRecordByExternalID(db, resource.ID, "1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	data, err := services.DecodeRecordData(stored)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if data["name"] != "Bob" {
		t.Errorf("Expected persisted update, got %v", data["name"])
	}
}

// TestDeleteRecord tests deletion and the follow-up 404
func TestDeleteRecord(t *testing.T) {
	db := setupTestDB(t)
	reg := faker.Default()
	project, _ := seedMockResource(t, db, reg)
	app := setupMockApp(t, db, reg)

	req := httptest.NewRequest("DELETE", "/api/"+project.ID+"/v1/users/2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("Expected status 204, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/"+project.ID+"/v1/users/2", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/"+project.ID+"/v1/users/2", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for double delete, got %d", resp.StatusCode)
	}
}
