package main

import (
	"os"
	"testing"
)

func TestGetPort(t *testing.T) {
	os.Unsetenv("PORT")
	if got := getPort(); got != "8081" {
		t.Errorf("getPort() = %q, want default 8081", got)
	}

	t.Setenv("PORT", "9999")
	if got := getPort(); got != "9999" {
		t.Errorf("getPort() = %q, want 9999", got)
	}
}
