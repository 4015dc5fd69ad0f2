package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		level      string
		wantErr    bool
	}{
		{"dev debug", false, "debug", false},
		{"prod info", true, "info", false},
		{"bad level", false, "chatty", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.production, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && log == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}
