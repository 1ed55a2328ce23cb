package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/carebright/carelog/internal/backend/docstore"
	"github.com/carebright/carelog/internal/backend/localauth"
	"github.com/carebright/carelog/internal/db"
	"github.com/carebright/carelog/internal/models"
	"github.com/gofiber/fiber/v2"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	documents := docstore.NewStore(database)
	t.Cleanup(func() { documents.Close() })

	auth := localauth.NewProvider(database, testSecret)
	handler := NewHandler(auth, documents, false)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(app, handler)
	return app
}

func jsonRequest(t *testing.T, method string, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return request
}

func doJSON(t *testing.T, app *fiber.App, request *http.Request) (*http.Response, map[string]any) {
	t.Helper()

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", request.Method, request.URL.Path, err)
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	response.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 && payload[0] == '{' {
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode response body %q: %v", payload, err)
		}
	}
	return response, decoded
}

func signupBody(email string) map[string]string {
	return map[string]string{
		"first_name":       "Ana",
		"mi":               "C",
		"last_name":        "Reyes",
		"bio":              "hello",
		"username":         "ana",
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	}
}

func signupAndLogin(t *testing.T, app *fiber.App, email string) *http.Cookie {
	t.Helper()

	response, _ := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", signupBody(email)))
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "secret123",
	}))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", response.StatusCode)
	}

	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("login did not set the auth cookie")
	return nil
}

func authed(request *http.Request, cookie *http.Cookie) *http.Request {
	request.AddCookie(cookie)
	return request
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	response, body := doJSON(t, app, jsonRequest(t, http.MethodGet, "/healthz", nil))
	if response.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %+v", response.StatusCode, body)
	}
}

func TestSignupCreatesNoSessionCookie(t *testing.T) {
	app := newTestApp(t)

	response, body := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", signupBody("ana@example.com")))
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%+v)", response.StatusCode, body)
	}
	if body["message"] != "Account created successfully! Please log in." {
		t.Fatalf("unexpected signup message: %+v", body)
	}
	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			t.Fatal("signup must not leave the client authenticated")
		}
	}
}

func TestSignupValidationFailureCreatesNoAccount(t *testing.T) {
	app := newTestApp(t)

	mismatched := signupBody("ana@example.com")
	mismatched["confirm_password"] = "secret124"
	response, body := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", mismatched))
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%+v)", response.StatusCode, body)
	}

	// The rejected signup left nothing behind to log in to.
	response, _ = doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "secret123",
	}))
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the never-created account, got %d", response.StatusCode)
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", signupBody("ana@example.com")))
	response, _ := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", signupBody("ana@example.com")))
	if response.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate email, got %d", response.StatusCode)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/signup", signupBody("ana@example.com")))

	_, wrongPassword := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "not-the-password",
	}))
	_, unknownEmail := doJSON(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "secret123",
	}))

	if wrongPassword["error"] == "" || wrongPassword["error"] != unknownEmail["error"] {
		t.Fatalf("wrong password and unknown email must read the same: %+v vs %+v", wrongPassword, unknownEmail)
	}
}

func TestGoalsRequireAuthentication(t *testing.T) {
	app := newTestApp(t)

	response, _ := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/goals", nil))
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", response.StatusCode)
	}

	request := jsonRequest(t, http.MethodGet, "/api/goals", nil)
	request.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-real-token")
	response, _ = doJSON(t, app, request)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bogus token, got %d", response.StatusCode)
	}
}

func TestGoalCRUDFlow(t *testing.T) {
	app := newTestApp(t)
	cookie := signupAndLogin(t, app, "ana@example.com")

	// Starts empty.
	response, err := app.Test(authed(jsonRequest(t, http.MethodGet, "/api/goals", nil), cookie), -1)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	var goals []models.Goal
	if err := json.NewDecoder(response.Body).Decode(&goals); err != nil {
		t.Fatalf("decode goal list: %v", err)
	}
	response.Body.Close()
	if len(goals) != 0 {
		t.Fatalf("expected no goals for a fresh account, got %+v", goals)
	}

	// Create returns the refreshed list.
	response, err = app.Test(authed(jsonRequest(t, http.MethodPost, "/api/goals", map[string]string{
		"title":       "Drink water",
		"description": "8 glasses",
		"icon":        "happy-outline",
	}), cookie), -1)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from create, got %d", response.StatusCode)
	}
	if err := json.NewDecoder(response.Body).Decode(&goals); err != nil {
		t.Fatalf("decode created list: %v", err)
	}
	response.Body.Close()
	if len(goals) != 1 || goals[0].Title != "Drink water" || goals[0].Icon != "happy-outline" {
		t.Fatalf("unexpected list after create: %+v", goals)
	}
	goalID := goals[0].ID

	// Fetch one.
	response, err = app.Test(authed(jsonRequest(t, http.MethodGet, "/api/goals/"+goalID, nil), cookie), -1)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	var goal models.Goal
	if err := json.NewDecoder(response.Body).Decode(&goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	response.Body.Close()
	if goal.ID != goalID || goal.Description != "8 glasses" {
		t.Fatalf("unexpected goal: %+v", goal)
	}

	// Patch only the title.
	patchResponse, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodPatch, "/api/goals/"+goalID, map[string]string{
		"title": "Drink more water",
	}), cookie))
	if patchResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from patch, got %d", patchResponse.StatusCode)
	}
	response, err = app.Test(authed(jsonRequest(t, http.MethodGet, "/api/goals/"+goalID, nil), cookie), -1)
	if err != nil {
		t.Fatalf("get patched goal: %v", err)
	}
	if err := json.NewDecoder(response.Body).Decode(&goal); err != nil {
		t.Fatalf("decode patched goal: %v", err)
	}
	response.Body.Close()
	if goal.Title != "Drink more water" || goal.Icon != "happy-outline" {
		t.Fatalf("patch must only touch the sent fields: %+v", goal)
	}

	// Delete, then the id is gone.
	deleteResponse, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodDelete, "/api/goals/"+goalID, nil), cookie))
	if deleteResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", deleteResponse.StatusCode)
	}
	missingResponse, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodGet, "/api/goals/"+goalID, nil), cookie))
	if missingResponse.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingResponse.StatusCode)
	}
}

func TestCreateGoalRejectsUnknownIcon(t *testing.T) {
	app := newTestApp(t)
	cookie := signupAndLogin(t, app, "ana@example.com")

	response, body := doJSON(t, app, authed(jsonRequest(t, http.MethodPost, "/api/goals", map[string]string{
		"title": "Mystery",
		"icon":  "mystery-icon",
	}), cookie))
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an uncatalogued icon, got %d (%+v)", response.StatusCode, body)
	}
}

func TestGoalsCannotBeMutatedByAnotherUser(t *testing.T) {
	app := newTestApp(t)
	anaCookie := signupAndLogin(t, app, "ana@example.com")
	beaCookie := signupAndLogin(t, app, "bea@example.com")

	response, err := app.Test(authed(jsonRequest(t, http.MethodPost, "/api/goals", map[string]string{
		"title": "Mine",
		"icon":  "happy-outline",
	}), anaCookie), -1)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	var goals []models.Goal
	if err := json.NewDecoder(response.Body).Decode(&goals); err != nil {
		t.Fatalf("decode goal list: %v", err)
	}
	response.Body.Close()
	goalID := goals[0].ID

	// Another authenticated account cannot touch it, even knowing the id.
	patchResponse, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodPatch, "/api/goals/"+goalID, map[string]string{
		"title": "Hijacked",
	}), beaCookie))
	if patchResponse.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign patch, got %d", patchResponse.StatusCode)
	}
	deleteResponse, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodDelete, "/api/goals/"+goalID, nil), beaCookie))
	if deleteResponse.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign delete, got %d", deleteResponse.StatusCode)
	}

	// The owner still sees the goal untouched.
	response, err = app.Test(authed(jsonRequest(t, http.MethodGet, "/api/goals/"+goalID, nil), anaCookie), -1)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	var goal models.Goal
	if err := json.NewDecoder(response.Body).Decode(&goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	response.Body.Close()
	if goal.Title != "Mine" {
		t.Fatalf("foreign mutation reached the owner's goal: %+v", goal)
	}
}

func TestUpdateAndDeleteMissingGoalReturnNotFound(t *testing.T) {
	app := newTestApp(t)
	cookie := signupAndLogin(t, app, "ana@example.com")

	response, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodPatch, "/api/goals/missing", map[string]string{
		"title": "x",
	}), cookie))
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 from patch, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, authed(jsonRequest(t, http.MethodDelete, "/api/goals/missing", nil), cookie))
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 from delete, got %d", response.StatusCode)
	}
}

func TestIconCatalogIsPublic(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/api/catalog/icons", nil), -1)
	if err != nil {
		t.Fatalf("list icons: %v", err)
	}
	var entries []map[string]string
	if err := json.NewDecoder(response.Body).Decode(&entries); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	response.Body.Close()
	if len(entries) != 8 {
		t.Fatalf("expected 8 catalog entries, got %d", len(entries))
	}
}

func TestProfileSnapshotReflectsSignupAndGoals(t *testing.T) {
	app := newTestApp(t)
	cookie := signupAndLogin(t, app, "ana@example.com")

	doJSON(t, app, authed(jsonRequest(t, http.MethodPost, "/api/goals", map[string]string{
		"title": "Sleep early",
		"icon":  "bed-outline",
	}), cookie))

	response, body := doJSON(t, app, authed(jsonRequest(t, http.MethodGet, "/api/profile", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from profile, got %d", response.StatusCode)
	}

	profile, ok := body["profile"].(map[string]any)
	if !ok {
		t.Fatalf("expected a profile object, got %+v", body)
	}
	if profile["username"] != "ana" || profile["first_name"] != "Ana" {
		t.Fatalf("profile does not reflect signup: %+v", profile)
	}

	if body["goal_count"] != float64(1) {
		t.Fatalf("expected goal count 1, got %+v", body["goal_count"])
	}
	distribution, ok := body["distribution"].(map[string]any)
	if !ok {
		t.Fatalf("expected a distribution object, got %+v", body)
	}
	if distribution["bed-outline"] != float64(100) {
		t.Fatalf("expected bed-outline at 100%%, got %+v", distribution)
	}
	if distribution["happy-outline"] != float64(0) {
		t.Fatalf("expected other icons at 0%%, got %+v", distribution)
	}
}

func TestLogoutRevokesTheSession(t *testing.T) {
	app := newTestApp(t)
	cookie := signupAndLogin(t, app, "ana@example.com")

	response, _ := doJSON(t, app, authed(jsonRequest(t, http.MethodPost, "/api/auth/logout", nil), cookie))
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", response.StatusCode)
	}

	response, _ = doJSON(t, app, authed(jsonRequest(t, http.MethodGet, "/api/goals", nil), cookie))
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected the revoked session to be rejected, got %d", response.StatusCode)
	}
}
