package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E201").WithDetailf("no element matches %q", "#login")

	if err.Category != CategoryMount {
		t.Errorf("Category = %q", err.Category)
	}
	if err.Error() != `E201: Mount point not found (no element matches "#login")` {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Suggestion == "" {
		t.Error("registered suggestion should be copied")
	}

	unknown := New("E999")
	if unknown.Message != "Unknown error" {
		t.Errorf("unknown code message = %q", unknown.Message)
	}
}

func TestWrapAndMatch(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := fmt.Errorf("startup: %w", New("E402").Wrap(cause))

	if !stderrors.Is(err, New("E402")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E401")) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}
	if Code(err) != "E402" {
		t.Errorf("Code() = %q", Code(err))
	}
	if Code(cause) != "" {
		t.Errorf("Code(plain) = %q", Code(cause))
	}

	if FromError(err, "E401").Code != "E402" {
		t.Error("FromError should keep an existing SputnikError")
	}
	if got := FromError(cause, "E401"); got.Code != "E401" || got.Wrapped != cause {
		t.Errorf("FromError(plain) = %+v", got)
	}
	if FromError(nil, "E401") != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestFormat(t *testing.T) {
	prev := colorEnabled
	DisableColors()
	defer func() { colorEnabled = prev }()

	err := New("E103").WithDetail(`session.store is "etcd"`)
	out := err.Format()
	for _, want := range []string{"ERROR E103: Unknown session store", `session.store is "etcd"`, "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(err.FormatJSON()), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["code"] != "E103" || decoded["category"] != "config" {
		t.Errorf("FormatJSON() = %v", decoded)
	}

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("boom"))
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("Print(plain) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if len(lines) < 2 {
		t.Errorf("expected wrapping, got %v", lines)
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if !sort.StringsAreSorted(codes) {
		t.Errorf("Codes() not sorted: %v", codes)
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" {
			t.Errorf("code %s has no message", code)
		}
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("GetTemplate(E999) should not be found")
	}
}
