package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("SUIKA_TEST_ADDR", ":9000")
	t.Setenv("SUIKA_TEST_HZ", "30")
	t.Setenv("SUIKA_TEST_BAD", "x")
	t.Setenv("SUIKA_TEST_SOUND", "true")

	if got := String("SUIKA_TEST_ADDR", ":8080"); got != ":9000" {
		t.Fatalf("String=%q", got)
	}
	if got := String("SUIKA_TEST_UNSET", ":8080"); got != ":8080" {
		t.Fatalf("String default=%q", got)
	}
	if got := Int("SUIKA_TEST_HZ", 60); got != 30 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("SUIKA_TEST_BAD", 60); got != 60 {
		t.Fatalf("Int on bad value=%d", got)
	}
	if !Bool("SUIKA_TEST_SOUND", false) || Bool("SUIKA_TEST_BAD", false) {
		t.Fatalf("Bool parsing wrong")
	}
	if _, err := GetEnvVariable(""); err == nil {
		t.Fatalf("empty name should fail")
	}
}

func TestInitConfigLoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SUIKA_DOTENV_PROFILE=party\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SUIKA_DOTENV_PROFILE") })

	if err := InitConfig(nil, path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if got := String("SUIKA_DOTENV_PROFILE", ""); got != "party" {
		t.Fatalf("profile=%q", got)
	}
}
