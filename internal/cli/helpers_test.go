package cli

import (
	"bytes"
	"errors"
	"testing"
)

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{name: "nil", err: nil, wantCode: 0, wantOut: ""},
		{name: "plain", err: errors.New("boom"), wantCode: 1, wantOut: "Error: boom\n"},
		{name: "coded", err: exitError(2, errors.New("bad flag")), wantCode: 2, wantOut: "Error: bad flag\n"},
		{name: "silent", err: silentExit(1), wantCode: 1, wantOut: ""},
		{name: "zero code", err: &ExitError{Err: errors.New("x")}, wantCode: 1, wantOut: "Error: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := ReportError(&buf, tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if buf.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := exitError(1, cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
	if silentExit(1).Error() != "exit status 1" {
		t.Errorf("unexpected silent message %q", silentExit(1).Error())
	}
}
