package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{"2MB", 2 * MB, false},
		{"2 mb", 2 * MB, false},
		{"1.5M", Size(1.5 * float64(MB)), false},
		{"500KiB", 500 * KB, false},
		{"1G", GB, false},
		{"100B", 100, false},
		{"3", 3 * MB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"5XB", 0, true},
		{"-1MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestSize_MB(t *testing.T) {
	if got := (3 * MB).MB(); got != 3 {
		t.Errorf("expected 3, got %f", got)
	}
	if got := FromMB(2.5).MB(); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
	if got := FromMB(-1); got != 0 {
		t.Errorf("negative megabytes should clamp to 0, got %d", got)
	}
}

func TestSize_String(t *testing.T) {
	tests := []struct {
		size Size
		want string
	}{
		{512, "512B"},
		{2 * KB, "2.0KB"},
		{3 * MB / 2, "1.5MB"},
		{2 * GB, "2.0GB"},
	}
	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestSize_UnmarshalText(t *testing.T) {
	var s Size
	if err := s.UnmarshalText([]byte("4MB")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != 4*MB {
		t.Errorf("expected 4MB, got %s", s)
	}
}
