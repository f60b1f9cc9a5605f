package validation

import "testing"

type datedPayload struct {
	IssueDate string `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate   string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func TestValidateDates(t *testing.T) {
	if err := Validate(datedPayload{IssueDate: "2024-02-08", DueDate: "2024-03-08"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	err := Validate(datedPayload{IssueDate: "02/08/2024"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	v := Violations(err)
	if _, ok := v["issue_date"]; !ok {
		t.Errorf("expected issue_date violation, got %v", v)
	}
	if v["due_date"] != "required" {
		t.Errorf("due_date = %q, want required", v["due_date"])
	}
}

func TestViolationsOnNonValidationError(t *testing.T) {
	if v := Violations(nil); len(v) != 0 {
		t.Errorf("expected empty map, got %v", v)
	}
}
