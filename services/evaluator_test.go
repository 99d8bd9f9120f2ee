// file: services/evaluator_test.go
package services

import "testing"

func TestCheckResult(t *testing.T) {
	tests := []struct {
		descriptor string
		result     string
		want       bool
	}{
		{"42", "42", true},
		{"42", "43", false},
		{"42", " 42 ", true},
		{"42", "42.0", true},
		{"3.14", "3.15", false},
		{"3.14", "3.14000000001", true},
		{"abc", "abc", true},
		{"abc", "ABC", false},
		{"first|second", "second", true},
		{"first|second", "third", false},
		{"1|2|3", "2.0", true},
		{"", "", false},
		{"answer", "", false},
		{"|", "", false},
	}
	for _, tt := range tests {
		got := CheckResult(tt.descriptor, tt.result)
		if got != tt.want {
			t.Errorf("CheckResult(%q, %q) = %v, want %v", tt.descriptor, tt.result, got, tt.want)
		}
	}
}
