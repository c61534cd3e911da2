package utils

import (
	"bytes"
	"testing"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"id": 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got, want := buf.String(), "{\n\t\"id\": 1\n}\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if err := PrintJSON(&buf, make(chan int)); err == nil {
		t.Error("expected an error for an unsupported type")
	}
}
