package apperr

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", BadRequest("bad"), 400},
		{"conflict renders as 400", Conflict("dup"), 400},
		{"unauthorized", Unauthorized("who"), 401},
		{"forbidden", Forbidden("no"), 403},
		{"not found", NotFound("gone"), 404},
		{"upstream", Upstream("classifier", 503, "down"), 502},
		{"internal", Internal("boom", io.EOF), 500},
		{"plain error is internal", errors.New("x"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(KindOf(tt.err)); got != tt.want {
				t.Errorf("Status(KindOf(%v)) = %d, expected %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("update bid: %w", Forbidden("not yours"))
	if !Is(err, KindForbidden) {
		t.Fatalf("expected wrapped error to keep forbidden kind")
	}
	if Is(err, KindNotFound) {
		t.Fatalf("wrapped forbidden reported as not found")
	}
}

func TestHandlerHidesInternalDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return Internal("disk write failed", errors.New("/var/secret: permission denied"))
	})
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return Upstream("crop disease API", 429, "quota exceeded")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 500 {
		t.Fatalf("status = %d, expected 500", resp.StatusCode)
	}
	if strings.Contains(string(body), "secret") {
		t.Fatalf("internal error leaked detail: %s", body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/upstream", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != 502 {
		t.Fatalf("status = %d, expected 502", resp.StatusCode)
	}
	if !strings.Contains(string(body), "status 429") || !strings.Contains(string(body), "quota exceeded") {
		t.Fatalf("upstream status/body not embedded: %s", body)
	}
}
