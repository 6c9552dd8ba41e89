package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(_ string) (string, int64, error) {
	return s.token, 900, s.err
}

func setupHandlerApp(t *testing.T, issuer TokenIssuer) (*fiber.App, *Service) {
	t.Helper()
	svc := NewService(NewMemoryRepository(), 10)
	h := NewHandler(svc, issuer)

	app := fiber.New()
	app.Post("/api/register", h.Register)
	app.Post("/api/token", h.Token)
	app.Post("/api/keys/revoke", h.Revoke)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return resp.StatusCode, payload
}

func TestHandlerRegister(t *testing.T) {
	app, _ := setupHandlerApp(t, stubIssuer{token: "tok"})

	status, body := postJSON(t, app, "/api/register", `{"name":"agency","link_limit":3}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	identityID, _ := body["identity_id"].(string)
	apiKey, _ := body["api_key"].(string)
	if identityID == "" || apiKey == "" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["link_limit"] != float64(3) {
		t.Fatalf("expected link_limit 3, got %v", body["link_limit"])
	}
}

func TestHandlerRegisterRequiresName(t *testing.T) {
	app, _ := setupHandlerApp(t, stubIssuer{token: "tok"})

	status, body := postJSON(t, app, "/api/register", `{}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	// Failures share the JSON shape of the gateway endpoints.
	if body["status"] != false || body["message"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHandlerToken(t *testing.T) {
	app, svc := setupHandlerApp(t, stubIssuer{token: "session-token"})

	_, key, err := svc.Register(context.Background(), RegisterInput{DisplayName: "agency"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	status, body := postJSON(t, app, "/api/token", `{"api_key":"`+key.Key+`"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["token"] != "session-token" || body["expires_in"] != float64(900) {
		t.Fatalf("unexpected body: %v", body)
	}

	status, body = postJSON(t, app, "/api/token", `{"api_key":"unknown"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if body["status"] != false || body["error"] != "Invalid credential" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHandlerTokenRejectsRevokedKey(t *testing.T) {
	app, svc := setupHandlerApp(t, stubIssuer{token: "session-token"})

	_, key, err := svc.Register(context.Background(), RegisterInput{DisplayName: "agency"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RevokeKey(context.Background(), key.Key); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	status, _ := postJSON(t, app, "/api/token", `{"api_key":"`+key.Key+`"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked key, got %d", status)
	}
}

func TestHandlerTokenIssuerFailure(t *testing.T) {
	app, svc := setupHandlerApp(t, stubIssuer{err: errors.New("signing broken")})

	_, key, err := svc.Register(context.Background(), RegisterInput{DisplayName: "agency"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	status, body := postJSON(t, app, "/api/token", `{"api_key":"`+key.Key+`"}`)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body["status"] != false || body["message"] != "Internal server error" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHandlerRevoke(t *testing.T) {
	app, svc := setupHandlerApp(t, stubIssuer{token: "tok"})

	_, key, err := svc.Register(context.Background(), RegisterInput{DisplayName: "agency"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	status, body := postJSON(t, app, "/api/keys/revoke", `{"api_key":"`+key.Key+`"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "revoked" {
		t.Fatalf("unexpected body: %v", body)
	}

	status, body = postJSON(t, app, "/api/keys/revoke", `{"api_key":"missing"}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["status"] != false || body["message"] != "key not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}
