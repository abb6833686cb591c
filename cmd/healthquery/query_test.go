package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/respond"
)

func TestQueryCommand(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		handler        http.HandlerFunc
		expectedStdout string
		expectErr      bool
	}{
		{
			name:   "JSON output is indented",
			format: "json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				respond.WithJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
			},
			expectedStdout: "{\n  \"status\": \"ok\"\n}\n",
		},
		{
			name:   "YAML output",
			format: "yaml",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"ok","environment":"development"}`))
			},
			expectedStdout: "status: ok\nenvironment: development\n",
		},
		{
			name:   "nothing is printed when the body is not JSON",
			format: "json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("Internal Server Error"))
			},
			expectErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := httptest.NewServer(tt.handler)
			defer s.Close()

			stdout := new(bytes.Buffer)
			cmd := QueryCommand{
				URL:    s.URL,
				Query:  "how is the backend?",
				Format: tt.format,
			}
			err := cmd.run(context.Background(), stdout, newLogger(io.Discard, "debug"))
			if (err != nil) != tt.expectErr {
				t.Fatalf("expected error=%v, got %v", tt.expectErr, err)
			}
			if actual := stdout.String(); actual != tt.expectedStdout {
				t.Errorf("expected %q, got %q", tt.expectedStdout, actual)
			}
		})
	}
}

func TestQueryCommandUnreachable(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	stdout := new(bytes.Buffer)
	cmd := QueryCommand{URL: url, Format: "json"}
	if err := cmd.run(context.Background(), stdout, newLogger(io.Discard, "info")); err == nil {
		t.Fatal("expected error, got nil")
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got %q", stdout.String())
	}
}
