package job

import (
	"strings"
	"testing"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "simple", raw: "abc123"},
		{name: "uuid-like", raw: "2f40fe6c-3b9b-474e-94f0-74e88b7fafa7"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace", raw: "abc 123", wantErr: true},
		{name: "newline", raw: "abc\n123", wantErr: true},
		{name: "control", raw: "abc\x00", wantErr: true},
		{name: "too long", raw: strings.Repeat("a", 129), wantErr: true},
		{name: "max length", raw: strings.Repeat("a", 128)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseID(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) succeeded, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q): %v", tc.raw, err)
			}
			if id.String() != tc.raw {
				t.Fatalf("ParseID(%q) = %q", tc.raw, id)
			}
		})
	}
}

func TestDecodeProgress(t *testing.T) {
	id, err := DecodeProgress([]byte(`{"jobId":"abc123","status":"started"}`))
	if err != nil {
		t.Fatalf("decode valid event: %v", err)
	}
	if id != "abc123" {
		t.Fatalf("decoded id = %q, want abc123", id)
	}
}

func TestDecodeProgressExtraFields(t *testing.T) {
	id, err := DecodeProgress([]byte(`{"jobId":"abc123","status":"completed","videoId":"dQw4w9WgXcQ"}`))
	if err != nil {
		t.Fatalf("decode event with extra fields: %v", err)
	}
	if id != "abc123" {
		t.Fatalf("decoded id = %q, want abc123", id)
	}
}

func TestDecodeProgressMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "not json at all"},
		{name: "missing jobId", payload: `{"status":"started"}`},
		{name: "empty jobId", payload: `{"jobId":"","status":"started"}`},
		{name: "non-string jobId", payload: `{"jobId":42,"status":"started"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeProgress([]byte(tc.payload)); err == nil {
				t.Fatalf("DecodeProgress(%q) succeeded, want error", tc.payload)
			}
		})
	}
}
