package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	content := "# comment\nSTOREFRONT_TEST_A=from-file\nexport STOREFRONT_TEST_B=\"quoted\"\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("STOREFRONT_TEST_A", "from-process")
	t.Setenv("STOREFRONT_TEST_B", "")
	os.Unsetenv("STOREFRONT_TEST_B")

	Load(filepath.Join(dir, "missing.env"), p)

	if got := os.Getenv("STOREFRONT_TEST_A"); got != "from-process" {
		t.Fatalf("A = %q", got)
	}
	if got := os.Getenv("STOREFRONT_TEST_B"); got != "quoted" {
		t.Fatalf("B = %q", got)
	}
}
