package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOptionalID(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   string // "" means nil
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"parent_id":null}`, wantPresent: true},
		{name: "empty string", body: `{"parent_id":""}`, wantPresent: true},
		{name: "id", body: `{"parent_id":"f1"}`, wantPresent: true, wantValue: "f1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				ParentID OptionalID `json:"parent_id"`
			}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if req.ParentID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", req.ParentID.Present, tt.wantPresent)
			}
			got := ""
			if req.ParentID.Value != nil {
				got = *req.ParentID.Value
			}
			if got != tt.wantValue {
				t.Errorf("Value = %q, want %q", got, tt.wantValue)
			}
		})
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","bogus":1}`))
	w := httptest.NewRecorder()

	var dest struct {
		Name string `json:"name"`
	}
	if err := ParseJSON(w, r, &dest); err == nil {
		t.Error("ParseJSON() expected error for unknown field")
	}
}

func TestViewPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/folders/f1?path=/documents", nil)
	if got := ViewPath(r, ""); got != "/documents" {
		t.Errorf("ViewPath(query) = %q", got)
	}
	if got := ViewPath(r, "/body"); got != "/body" {
		t.Errorf("ViewPath(body) = %q", got)
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusConflict, "cycle", map[string]any{"folder_id": "f1"})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "cycle" || body["folder_id"] != "f1" || body["title"] != "Conflict" {
		t.Errorf("body = %v", body)
	}
}
