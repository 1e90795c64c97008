package intent

import "testing"

func TestExtractAccessPointID(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"unlock door 42", "42"},
		{"unlock Door 42 now", "42"},
		{"open access point 17", "17"},
		{"unlock id 5", "5"},
		{"unlock #301", "301"},
		{"unlock the lobby", ""},
		{"unlock door", ""},
	}
	for _, tt := range tests {
		if got := ExtractAccessPointID(tt.message); got != tt.want {
			t.Errorf("ExtractAccessPointID(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractGUID(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"show event 123e4567-e89b-12d3-a456-426614174000", "123e4567-e89b-12d3-a456-426614174000"},
		{"event details for AbCdEf1234567890XyZw9", "AbCdEf1234567890XyZw9"},
		{"show event 12345", ""},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		if got := ExtractGUID(tt.message); got != tt.want {
			t.Errorf("ExtractGUID(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestStripDoorStopWords(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"unlock the lobby door", "lobby"},
		{"open the main entrance door", "main entrance"},
		{"unlock access point west wing", "west wing"},
		{"unlock the door", ""},
	}
	for _, tt := range tests {
		if got := StripDoorStopWords(tt.message); got != tt.want {
			t.Errorf("StripDoorStopWords(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestExtractBareInteger(t *testing.T) {
	tests := []struct {
		message string
		want    int
		ok      bool
	}{
		{"2", 2, true},
		{"2.", 2, true},
		{"option 3 please", 3, true},
		{"the first one", 0, false},
		{"door42", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractBareInteger(tt.message)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractBareInteger(%q) = (%d, %v), want (%d, %v)", tt.message, got, ok, tt.want, tt.ok)
		}
	}
}
