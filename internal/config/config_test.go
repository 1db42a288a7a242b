package config

import "testing"

func TestDataDirectoryOverrideTakesPrecedence(t *testing.T) {
	defer ClearDataDirectory()
	SetDataDirectory("/tmp/custom-outline-data")

	dir, err := DataDirectory()
	if err != nil {
		t.Fatalf("DataDirectory: %v", err)
	}
	if dir != "/tmp/custom-outline-data" {
		t.Errorf("got %q, want override", dir)
	}
}

func TestDataDirectoryDefaultsWhenNoOverride(t *testing.T) {
	ClearDataDirectory()
	dir, err := DataDirectory()
	if err != nil {
		t.Fatalf("DataDirectory: %v", err)
	}
	if dir == "" {
		t.Error("want non-empty default data directory")
	}
}

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	cfg := Load()
	if cfg == nil {
		t.Fatal("Load returned nil")
	}
}
