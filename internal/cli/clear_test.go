package cli

import (
	"os"
	"strings"
	"testing"
)

func TestClearRequiresForce(t *testing.T) {
	dir := seedDatabase(t, 1)
	_, err := execute(t, "clear", "--db", dir)
	if err == nil {
		t.Fatal("Execute() error = nil, want refusal without --force")
	}
	if got := GetExitCode(err); got != ExitCommandError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitCommandError)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 2 {
		t.Errorf("len(files) = %d, want 2 untouched files", len(files))
	}
}

func TestClear(t *testing.T) {
	dir := seedDatabase(t, 2)
	out, err := execute(t, "clear", "--db", dir, "--force")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "removed 4 file(s)") {
		t.Errorf("output = %q, want 4 files removed", out)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("len(files) = %d after clear, want 0", len(files))
	}
}
