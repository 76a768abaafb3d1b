package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"2048", 2048, false},
		{"512B", 512, false},
		{"4K", 4096, false},
		{"10M", 10 << 20, false},
		{"10MiB", 10 << 20, false},
		{"1.5G", 3 << 29, false},
		{"lots", 0, true},
		{"10Q", 0, true},
		{"-1M", 0, true},
		{"1e20G", 0, true},
		{"9223372036854775807", 0, true},
		{"8589934591G", 8589934591 << 30, false},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSize(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
