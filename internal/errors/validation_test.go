package errors

import (
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("due_date", "must be after the start date", "2024-01-01")

	if err.Field != "due_date" {
		t.Errorf("unexpected field: %s", err.Field)
	}
	if err.Value != "2024-01-01" {
		t.Errorf("unexpected value: %v", err.Value)
	}

	want := "validation error on field 'due_date': must be after the start date"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationErrorCarriesRule(t *testing.T) {
	err := NewValidationErrorWithRule("title", "is required", "required", nil)

	if err.Rule != "required" {
		t.Errorf("unexpected rule: %s", err.Rule)
	}
	if err.Field != "title" {
		t.Errorf("unexpected field: %s", err.Field)
	}
}

// The collection message collapses once more than one field failed; clients
// get the detail from the structured list, not the string.
func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors

	cases := []struct {
		add  *ValidationError
		want string
	}{
		{nil, "validation failed"},
		{NewValidationError("title", "is required", nil), "validation failed: title is required"},
		{NewValidationError("questions", "must not be empty", nil), "validation failed: 2 field errors"},
	}
	for _, tc := range cases {
		if tc.add != nil {
			errs = append(errs, *tc.add)
		}
		if errs.Error() != tc.want {
			t.Errorf("with %d errors: expected %q, got %q", len(errs), tc.want, errs.Error())
		}
	}
}
