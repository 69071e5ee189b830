package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
)

func TestErrorsCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     []string
		wantCode string
	}{
		{
			name: "list",
			args: []string{"errors"},
			want: []string{"E103", "E201", "mount", "Mount point not found", "E403"},
		},
		{
			name: "explain",
			args: []string{"errors", "e201"},
			want: []string{"E201 (mount): Mount point not found", "configured mount point"},
		},
		{
			name:     "unknown code",
			args:     []string{"errors", "E999"},
			wantCode: "E403",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantCode != "" {
				if serrors.Code(err) != tt.wantCode {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestErrorFormatFlagRejectsUnknown(t *testing.T) {
	_, err := execute(t, "version", "--error-format", "xml")
	if serrors.Code(err) != "E403" {
		t.Errorf("error = %v, want E403", err)
	}
}

func TestReportError(t *testing.T) {
	coded := serrors.New("E201").WithDetailf("no element matches %q", "#login")
	plain := errors.New(`unknown flag: --bogus`)

	tests := []struct {
		name   string
		err    error
		format string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "json keeps code",
			err:    coded,
			format: errorFormatJSON,
			check: func(t *testing.T, out string) {
				var got map[string]string
				if err := json.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("not JSON: %q", out)
				}
				if got["code"] != "E201" || got["category"] != "mount" {
					t.Errorf("decoded = %v", got)
				}
			},
		},
		{
			name:   "compact plain error becomes usage error",
			err:    plain,
			format: errorFormatCompact,
			check: func(t *testing.T, out string) {
				want := "E403: Invalid command usage: unknown flag: --bogus\n"
				if out != want {
					t.Errorf("out = %q, want %q", out, want)
				}
			},
		},
		{
			name:   "text",
			err:    coded,
			format: errorFormatText,
			check: func(t *testing.T, out string) {
				for _, want := range []string{"E201", "Mount point not found", `no element matches "#login"`} {
					if !strings.Contains(out, want) {
						t.Errorf("out missing %q:\n%s", want, out)
					}
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err, tt.format)
			tt.check(t, buf.String())
		})
	}

	var buf bytes.Buffer
	reportError(&buf, nil, errorFormatText)
	if buf.Len() != 0 {
		t.Errorf("reportError(nil) wrote %q", buf.String())
	}
}
