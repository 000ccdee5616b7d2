package normalize

import "testing"

func TestStudentID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"stu001", "STU001"},
		{"STU001", "STU001"},
		{"  stu042  ", "STU042"},
		{"", ""},
		{"   ", ""},
		{"Stu999", "STU999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := StudentID(tt.input)
			if got != tt.want {
				t.Errorf("StudentID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidStudentID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"STU001", true},
		{"stu001", true},
		{"  stu123  ", true},
		{"STU1234", false},
		{"STU12", false},
		{"STUABC", false},
		{"ABC001", false},
		{"STU001X", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsValidStudentID(tt.input)
			if got != tt.want {
				t.Errorf("IsValidStudentID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStudentIDs(t *testing.T) {
	got := StudentIDs([]string{"stu001", " stu002 ", "STU003"})
	want := []string{"STU001", "STU002", "STU003"}
	if len(got) != len(want) {
		t.Fatalf("StudentIDs returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("StudentIDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"John Doe", "John Doe"},
		{"  John Doe  ", "John Doe"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidYear(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"4", true},
		{" 3 ", true},
		{"0", false},
		{"5", false},
		{"first", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsValidYear(tt.input)
			if got != tt.want {
				t.Errorf("IsValidYear(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryParam(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"value", "value"},
		{"  value  ", "value"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := QueryParam(tt.input)
			if got != tt.want {
				t.Errorf("QueryParam(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
