package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teacherhub/quiz-service/internal/events"
)

func newRosterFixture() (*mockRepository, *events.MockEventPublisher, *mockInvalidator, RosterImportService) {
	repo := newMockRepository()
	repo.course.owners["course-1"] = "teacher-1"
	publisher := events.NewMockEventPublisher(testLogger())
	invalidator := &mockInvalidator{}
	return repo, publisher, invalidator, NewRosterImportService(repo, testLogger(), publisher, invalidator)
}

func TestImportFromCSV(t *testing.T) {
	repo, publisher, invalidator, service := newRosterFixture()

	csvData := strings.Join([]string{
		"student_id,name,email",
		"s-100,Ada Lovelace,ada@example.com",
		"s-101,Grace Hopper,grace@example.com",
	}, "\n")

	result, err := service.ImportFromCSV(context.Background(), "course-1", strings.NewReader(csvData), "teacher-1")
	if err != nil {
		t.Fatalf("ImportFromCSV: %v", err)
	}

	if result.SuccessCount != 2 || result.ErrorCount != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if len(repo.course.enrollments["course-1"]) != 2 {
		t.Errorf("expected 2 enrollments, got %d", len(repo.course.enrollments["course-1"]))
	}
	if repo.student.byExternalID["s-100"] == nil || repo.student.byExternalID["s-101"] == nil {
		t.Error("students not upserted")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventRosterImported {
		t.Errorf("expected one roster.imported event, got %+v", published)
	}

	// Enrollment counts feed course analytics, so the cache is dropped.
	dropped := invalidator.invalidated()
	if len(dropped) != 1 || dropped[0] != "course-1" {
		t.Errorf("expected analytics invalidated for course-1, got %v", dropped)
	}
}

func TestImportFromCSVPartialErrors(t *testing.T) {
	repo, _, _, service := newRosterFixture()

	csvData := strings.Join([]string{
		"student_id,name,email",
		"s-100,Ada Lovelace,ada@example.com",
		",Missing Id,missing@example.com",
		"s-102,Bad Email,not-an-email",
		"s-100,Ada Again,ada2@example.com",
	}, "\n")

	result, err := service.ImportFromCSV(context.Background(), "course-1", strings.NewReader(csvData), "teacher-1")
	if err != nil {
		t.Fatalf("ImportFromCSV: %v", err)
	}

	// Valid rows still land; each bad row is reported.
	if result.SuccessCount != 1 {
		t.Errorf("expected 1 success, got %d", result.SuccessCount)
	}
	if result.ErrorCount != 3 {
		t.Errorf("expected 3 failed rows, got %d", result.ErrorCount)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %+v", result.Errors)
	}
	if result.Errors[0].Row != 3 || result.Errors[0].Column != "student_id" {
		t.Errorf("unexpected first error: %+v", result.Errors[0])
	}
	if result.Errors[1].Column != "email" {
		t.Errorf("unexpected second error: %+v", result.Errors[1])
	}
	if result.Errors[2].Message != "duplicate student id in file" {
		t.Errorf("unexpected third error: %+v", result.Errors[2])
	}
	if len(repo.course.enrollments["course-1"]) != 1 {
		t.Errorf("expected 1 enrollment, got %d", len(repo.course.enrollments["course-1"]))
	}
}

func TestImportRequiresHeaderColumns(t *testing.T) {
	_, _, _, service := newRosterFixture()

	csvData := "id,full_name\n1,Ada"
	_, err := service.ImportFromCSV(context.Background(), "course-1", strings.NewReader(csvData), "teacher-1")
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestImportRequiresOwnership(t *testing.T) {
	_, _, _, service := newRosterFixture()

	csvData := "student_id,name,email\ns-1,Ada,ada@example.com"
	_, err := service.ImportFromCSV(context.Background(), "course-1", strings.NewReader(csvData), "intruder")
	if !IsUnauthorized(err) {
		t.Errorf("expected permission error, got %v", err)
	}
}

func TestImportEmptyFile(t *testing.T) {
	_, _, _, service := newRosterFixture()

	_, err := service.ImportFromCSV(context.Background(), "course-1", strings.NewReader("student_id,name,email"), "teacher-1")
	if !errors.Is(err, ErrImportEmpty) {
		t.Errorf("expected ErrImportEmpty, got %v", err)
	}
}

func TestImportFromFileRejectsUnknownExtension(t *testing.T) {
	_, _, _, service := newRosterFixture()

	_, err := service.ImportFromFile(context.Background(), "course-1", strings.NewReader(""), "roster.pdf", "teacher-1")
	if !errors.Is(err, ErrImportInvalidFormat) {
		t.Errorf("expected ErrImportInvalidFormat, got %v", err)
	}
}
