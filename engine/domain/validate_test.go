package domain

import (
	"errors"
	"testing"
)

func ptr(s string) *string { return &s }

func TestValidate_OK(t *testing.T) {
	employees := []Employee{
		{ID: "emp_001", Name: "Alice", EmploymentType: FullTime, ManagerID: ptr("emp_003")},
		{ID: "emp_002", Name: "Bob", EmploymentType: PartTime},
		{ID: "emp_003", Name: "Carol", EmploymentType: FullTime},
	}
	if err := Validate(employees); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	employees := []Employee{
		{ID: "emp_001", Name: "Alice"},
		{ID: "emp_001", Name: "Alice Again"},
	}
	err := Validate(employees)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestValidate_DanglingManager(t *testing.T) {
	employees := []Employee{
		{ID: "emp_001", Name: "Alice", ManagerID: ptr("emp_999")},
	}
	err := Validate(employees)
	if !errors.Is(err, ErrBrokenRef) {
		t.Fatalf("expected ErrBrokenRef, got %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	employees := []Employee{
		{ID: "a", Name: "A", ManagerID: ptr("b")},
		{ID: "b", Name: "B", ManagerID: ptr("c")},
		{ID: "c", Name: "C", ManagerID: ptr("a")},
	}
	err := Validate(employees)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestValidate_SelfManager(t *testing.T) {
	employees := []Employee{
		{ID: "a", Name: "A", ManagerID: ptr("a")},
	}
	if err := Validate(employees); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}
