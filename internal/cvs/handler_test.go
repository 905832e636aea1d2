package cvs_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cv-builder-backend/internal/bootstrap"
	"cv-builder-backend/internal/shared/config"
)

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func registerUser(t *testing.T, app *bootstrap.App, email string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test","email":%q,"password":"s3cret!!"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, resp.Code, resp.Body.String())
	}
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	t.Fatalf("register %s: no session cookie", email)
	return nil
}

func doJSON(t *testing.T, app *bootstrap.App, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

type cvEnvelope struct {
	CV struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Progress     int    `json:"progress"`
		PersonalInfo struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
		} `json:"personalInfo"`
		Skills []struct {
			Name  string `json:"name"`
			Level int    `json:"level"`
		} `json:"skills"`
		LastUpdated time.Time `json:"lastUpdated"`
	} `json:"cv"`
}

func decodeCV(t *testing.T, resp *httptest.ResponseRecorder) cvEnvelope {
	t.Helper()
	var envelope cvEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode cv response: %v", err)
	}
	return envelope
}

func TestCVRoundTrip(t *testing.T) {
	app := buildApp(t)
	cookie := registerUser(t, app, "ada@example.com")

	created := doJSON(t, app, cookie, http.MethodPost, "/api/v1/cv",
		`{"title":"My CV","personalInfo":{"fullName":"Ada Lovelace","email":"ada@example.com"}}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", created.Code, created.Body.String())
	}
	createdCV := decodeCV(t, created)
	if createdCV.CV.ID == "" {
		t.Fatalf("created CV has no id")
	}
	if createdCV.CV.Progress <= 0 {
		t.Fatalf("expected server-computed progress > 0, got %d", createdCV.CV.Progress)
	}

	fetched := doJSON(t, app, cookie, http.MethodGet, "/api/v1/cv/"+createdCV.CV.ID, "")
	if fetched.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", fetched.Code)
	}
	fetchedCV := decodeCV(t, fetched)
	if fetchedCV.CV.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("round trip lost data: %+v", fetchedCV.CV)
	}

	list := doJSON(t, app, cookie, http.MethodGet, "/api/v1/cv", "")
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), createdCV.CV.ID) {
		t.Fatalf("list missing created CV: %s", list.Body.String())
	}
}

func TestUpdateMergesAndRecomputesProgress(t *testing.T) {
	app := buildApp(t)
	cookie := registerUser(t, app, "ada@example.com")

	created := decodeCV(t, doJSON(t, app, cookie, http.MethodPost, "/api/v1/cv",
		`{"title":"My CV","personalInfo":{"fullName":"Ada Lovelace"}}`))

	// Patch only the skills; personalInfo is omitted and must survive.
	// The client-sent progress must be ignored.
	updated := doJSON(t, app, cookie, http.MethodPut, "/api/v1/cv/"+created.CV.ID,
		`{"skills":[{"name":"Mathematics","level":5}],"progress":99}`)
	if updated.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", updated.Code, updated.Body.String())
	}
	updatedCV := decodeCV(t, updated)

	if updatedCV.CV.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("omitted section was dropped: %+v", updatedCV.CV)
	}
	if len(updatedCV.CV.Skills) != 1 || updatedCV.CV.Skills[0].Name != "Mathematics" {
		t.Fatalf("patched section not applied: %+v", updatedCV.CV.Skills)
	}
	if updatedCV.CV.Progress == 99 {
		t.Fatalf("client-sent progress must be ignored")
	}
	if updatedCV.CV.Progress <= created.CV.Progress {
		t.Fatalf("adding a skill should raise progress: %d -> %d",
			created.CV.Progress, updatedCV.CV.Progress)
	}
	if !updatedCV.CV.LastUpdated.After(created.CV.LastUpdated) {
		t.Fatalf("update must bump lastUpdated")
	}
}

func TestCVsAreOwnerScoped(t *testing.T) {
	app := buildApp(t)
	ada := registerUser(t, app, "ada@example.com")
	mallory := registerUser(t, app, "mallory@example.com")

	created := decodeCV(t, doJSON(t, app, ada, http.MethodPost, "/api/v1/cv", `{"title":"Private"}`))

	if resp := doJSON(t, app, mallory, http.MethodGet, "/api/v1/cv/"+created.CV.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", resp.Code)
	}
	if resp := doJSON(t, app, mallory, http.MethodDelete, "/api/v1/cv/"+created.CV.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", resp.Code)
	}

	// Still there for the owner.
	if resp := doJSON(t, app, ada, http.MethodGet, "/api/v1/cv/"+created.CV.ID, ""); resp.Code != http.StatusOK {
		t.Fatalf("owner get after foreign delete attempt: expected 200, got %d", resp.Code)
	}
}

func TestDeleteCV(t *testing.T) {
	app := buildApp(t)
	cookie := registerUser(t, app, "ada@example.com")

	created := decodeCV(t, doJSON(t, app, cookie, http.MethodPost, "/api/v1/cv", `{"title":"Doomed"}`))

	deleted := doJSON(t, app, cookie, http.MethodDelete, "/api/v1/cv/"+created.CV.ID, "")
	if deleted.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", deleted.Code)
	}
	if !strings.Contains(deleted.Body.String(), `"success":true`) {
		t.Fatalf("unexpected delete body: %s", deleted.Body.String())
	}

	if resp := doJSON(t, app, cookie, http.MethodGet, "/api/v1/cv/"+created.CV.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.Code)
	}
	if resp := doJSON(t, app, cookie, http.MethodDelete, "/api/v1/cv/"+created.CV.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("double delete: expected 404, got %d", resp.Code)
	}
}

func TestCVRoutesRequireSession(t *testing.T) {
	app := buildApp(t)

	if resp := doJSON(t, app, nil, http.MethodGet, "/api/v1/cv", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.Code)
	}
}

func TestExportRendersPrintablePage(t *testing.T) {
	app := buildApp(t)
	cookie := registerUser(t, app, "ada@example.com")

	created := decodeCV(t, doJSON(t, app, cookie, http.MethodPost, "/api/v1/cv",
		`{"title":"My CV","personalInfo":{"fullName":"Ada Lovelace"}}`))

	resp := doJSON(t, app, cookie, http.MethodGet, "/api/v1/cv/"+created.CV.ID+"/export", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("export: expected text/html, got %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "Ada Lovelace") {
		t.Fatalf("export page missing CV content")
	}
}
