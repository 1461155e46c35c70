package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type sampleBody struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com","name":"ann"}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "ann" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"email":"a@b.com","name":"ann","admin":true}`,
		"bad email":     `{"email":"nope","name":"ann"}`,
		"too long":      `{"email":"a@b.com","name":"annabelle"}`,
		"malformed":     `{"email":`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body sampleBody
			err := DecodeJSONBody(req, &body)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyReportsJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ann"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["email"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&user_id=9&bad=x", nil)

	limit, err := ParseQueryInt(req, "limit", 25, 1, 100)
	if err != nil || limit != 5 {
		t.Fatalf("unexpected limit %d err %v", limit, err)
	}
	if _, err := ParseQueryInt(req, "bad", 25, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	id, ok, err := ParseQueryID(req, "user_id")
	if err != nil || !ok || id != 9 {
		t.Fatalf("unexpected id %d ok %v err %v", id, ok, err)
	}
	if _, ok, err := ParseQueryID(req, "missing"); ok || err != nil {
		t.Fatalf("expected absent parameter, got ok=%v err=%v", ok, err)
	}
	if _, _, err := ParseQueryID(req, "bad"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := ParsePathID("abc", "product"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if id, err := ParsePathID("12", "product"); err != nil || id != 12 {
		t.Fatalf("unexpected id %d err %v", id, err)
	}
}

type optionalBody struct {
	Note *string `json:"note" validate:"omitempty,max=10"`
}

func TestDecodeJSONBodyTreatsEmptyBodyAsEmptyObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	var opt optionalBody
	if err := DecodeJSONBody(req, &opt); err != nil {
		t.Fatalf("expected empty body to decode, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected required fields to fail, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsTrailingAndOversizedPayloads(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"a"}{"note":"b"}`))
	var opt optionalBody
	if err := DecodeJSONBody(req, &opt); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected trailing data to fail, got %v", err)
	}

	huge := `{"note":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	err := DecodeJSONBody(req, &opt)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "request body too large" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}
