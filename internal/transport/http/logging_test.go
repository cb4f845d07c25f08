package http

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"
)

func TestMaskResetToken(t *testing.T) {
	tests := map[string]string{
		"/api/v1/users/resetPassword/abc123":     "/api/v1/users/resetPassword/redacted",
		"/api/v1/users/resetPassword/abc123?x=1": "/api/v1/users/resetPassword/redacted?x=1",
		"/api/v1/tours?sort=price":               "/api/v1/tours?sort=price",
	}
	for in, want := range tests {
		if got := maskResetToken(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestSanitizeBodyRedactsSecrets(t *testing.T) {
	body := []byte(`{"email":"ada@example.com","password":"pass1234","passwordConfirm":"pass1234","token":"eyJ..."}`)
	got, ok := sanitizeBody(body, "application/json").(map[string]interface{})
	if !ok {
		t.Fatalf("expected map summary, got %T", got)
	}
	if got["email"] != "ada@example.com" {
		t.Fatalf("expected email to be kept, got %v", got["email"])
	}
	for _, key := range []string{"password", "passwordConfirm", "token"} {
		if got[key] != redacted {
			t.Fatalf("expected %s redacted, got %v", key, got[key])
		}
	}

	form := sanitizeBody([]byte("name=Ada&password=secret"), "application/x-www-form-urlencoded").(map[string]interface{})
	if form["password"] != redacted || form["name"] != "Ada" {
		t.Fatalf("unexpected form summary %v", form)
	}
}

func TestSanitizeBodyMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("name", "Ada")
	_ = w.WriteField("password", "secret")
	fw, _ := w.CreateFormFile("photo", "me.png")
	_, _ = fw.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	_ = w.Close()

	got := sanitizeBody(buf.Bytes(), w.FormDataContentType()).(map[string]interface{})
	if got["name"] != "Ada" || got["password"] != redacted || got["photo"] != "file:me.png" {
		t.Fatalf("unexpected multipart summary %v", got)
	}
}

func TestSanitizeBodyTruncates(t *testing.T) {
	long := `{"summary":"` + strings.Repeat("a", 3*maxLoggedBody) + `"}`
	got := sanitizeBody([]byte(long), "application/json").(map[string]interface{})
	if got["summary"] == nil {
		t.Fatalf("expected summary key, got %v", got)
	}
	if s, _ := got["summary"].(string); !strings.HasSuffix(s, "...(truncated)") {
		t.Fatalf("expected clamped string, got %d bytes", len(s))
	}
}
