package marketclient

import (
	"net/http"
	"strings"
	"testing"
)

func TestFormatErrorPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
		want    string
	}{
		{
			name:    "plain string passes through unchanged",
			payload: "lead already claimed",
			want:    "lead already claimed",
		},
		{
			name:    "detail takes priority over fields",
			payload: map[string]interface{}{"detail": "cannot delete primary bank account", "account": []interface{}{"in use"}},
			want:    "cannot delete primary bank account",
		},
		{
			name:    "error key is honored",
			payload: map[string]interface{}{"error": "wallet balance too low"},
			want:    "wallet balance too low",
		},
		{
			name:    "nil is empty",
			payload: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatErrorPayload(tt.payload); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatErrorPayloadIsIdempotent(t *testing.T) {
	once := FormatErrorPayload("OTP expired")
	twice := FormatErrorPayload(once)
	if once != twice {
		t.Fatalf("expected idempotent formatting, got %q then %q", once, twice)
	}
}

func TestFormatErrorPayloadFieldErrors(t *testing.T) {
	got := FormatErrorPayload(map[string]interface{}{
		"phone": []interface{}{"Invalid format"},
	})
	if !strings.Contains(got, "phone") || !strings.Contains(got, "Invalid format") {
		t.Fatalf("expected field name and message in %q", got)
	}
}

func TestParseAPIErrorShapes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantCode   string
		wantField  string
	}{
		{
			name:       "detail with code",
			status:     401,
			body:       `{"detail":"Given token not valid","code":"token_not_valid"}`,
			wantDetail: "Given token not valid",
			wantCode:   "token_not_valid",
		},
		{
			name:      "field map",
			status:    400,
			body:      `{"pincode":["Unknown pincode"]}`,
			wantField: "pincode",
		},
		{
			name:       "non-json body",
			status:     502,
			body:       "Bad Gateway",
			wantDetail: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPIError(tt.status, []byte(tt.body))
			if got.Status != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, got.Status)
			}
			if got.Detail != tt.wantDetail {
				t.Fatalf("expected detail %q, got %q", tt.wantDetail, got.Detail)
			}
			if got.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, got.Code)
			}
			if tt.wantField != "" {
				if _, ok := got.Fields[tt.wantField]; !ok {
					t.Fatalf("expected field %q in %v", tt.wantField, got.Fields)
				}
			}
		})
	}
}

func TestTokenInvalid(t *testing.T) {
	tests := []struct {
		name string
		err  APIError
		want bool
	}{
		{
			name: "token_not_valid code",
			err:  APIError{Status: http.StatusUnauthorized, Code: "token_not_valid"},
			want: true,
		},
		{
			name: "token mentioned in detail",
			err:  APIError{Status: http.StatusUnauthorized, Detail: "Access token expired"},
			want: true,
		},
		{
			name: "unrelated 401",
			err:  APIError{Status: http.StatusUnauthorized, Detail: "account suspended"},
			want: false,
		},
		{
			name: "token code on non-401",
			err:  APIError{Status: http.StatusForbidden, Code: "token_not_valid"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.TokenInvalid(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAPIErrorMessageFallsBackToFields(t *testing.T) {
	err := &APIError{
		Status: 400,
		Fields: map[string][]string{"code": {"OTP mismatch"}},
	}
	if msg := err.Error(); !strings.Contains(msg, "OTP mismatch") {
		t.Fatalf("expected field message surfaced, got %q", msg)
	}

	empty := &APIError{Status: 503}
	if msg := empty.Error(); !strings.Contains(msg, "503") {
		t.Fatalf("expected status in fallback message, got %q", msg)
	}
}
