package errors

import (
	"testing"
)

func TestValidateArtifactName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid graphml", "graph.graphml", false},
		{"valid json", "graph.json", false},
		{"valid rust", "computation_graph.rs", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"with path /", "out/graph.json", true},
		{"with path \\", "out\\graph.json", true},
		{"hidden file", ".graph.json", true},
		{"control char", "graph\x01.json", true},
		{"newline", "graph\n.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArtifactName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArtifactName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidPath {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out", false},
		{"absolute", "/tmp/feal", false},
		{"current", ".", false},

		{"empty", "", true},
		{"null byte", "out\x00", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		bits    int
		want    uint64
		wantErr bool
	}{
		{"plain", "ff", 8, 0xff, false},
		{"prefixed", "0x0123456789abcdef", 64, 0x0123456789abcdef, false},
		{"upper prefix", "0XDF3B", 16, 0xdf3b, false},
		{"separators", "0x0123_4567", 32, 0x01234567, false},
		{"whitespace", "  1f  ", 16, 0x1f, false},

		{"empty", "", 16, 0, true},
		{"too wide", "0x10000", 16, 0, true},
		{"not hex", "0xzz", 16, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input, tt.bits)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidInput) {
					t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %#x, want %#x", tt.input, got, tt.want)
			}
		})
	}
}
