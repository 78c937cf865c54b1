package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()

	existing := filepath.Join(dir, "candidate.json")
	if err := os.WriteFile(existing, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"existing file", existing, false},
		{"empty filename", "", true},
		{"missing file", filepath.Join(dir, "missing.json"), true},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path means stdout", func(t *testing.T) {
		if err := ValidateOutputFile(""); err != nil {
			t.Errorf("ValidateOutputFile(\"\") = %v", err)
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		target := filepath.Join(dir, "nested", "out", "result.json")
		if err := ValidateOutputFile(target); err != nil {
			t.Fatalf("ValidateOutputFile(%q) = %v", target, err)
		}
		if _, err := os.Stat(filepath.Dir(target)); err != nil {
			t.Errorf("directory not created: %v", err)
		}
	})
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"candidate.json", ".json"},
		{"candidate.JSON", ".json"},
		{"profile.YAML", ".yaml"},
		{"noext", ""},
		{"archive.tar.gz", ".gz"},
	}
	for _, tt := range tests {
		if got := GetFileExtension(tt.filename); got != tt.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestIsProfileFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"candidate.json", true},
		{"candidate.yaml", true},
		{"candidate.yml", true},
		{"candidate.JSON", true},
		{"resume.pdf", false},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsProfileFile(tt.filename); got != tt.want {
			t.Errorf("IsProfileFile(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
