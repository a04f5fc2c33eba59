package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/stats"
)

// fakeResultsService serves queued responses, one per GetResults call.
type fakeResultsService struct {
	ResultsService
	mu    sync.Mutex
	queue []func() (*QuizResultsResponse, error)
}

func (f *fakeResultsService) GetResults(ctx context.Context, quizID, userID string, query stats.ResultsQuery) (*QuizResultsResponse, error) {
	f.mu.Lock()
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return &QuizResultsResponse{}, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	f.mu.Unlock()
	return next()
}

func (f *fakeResultsService) push(fn func() (*QuizResultsResponse, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

type fakeFeedbackService struct {
	FeedbackService
}

func (f *fakeFeedbackService) GetImportedFeedback(ctx context.Context, quizID, userID string) ([]stats.FeedbackRecord, error) {
	return nil, nil
}

func newSnapshotFixture() (*fakeResultsService, QuizDataService) {
	repo := newMockRepository()
	repo.course.owners["course-1"] = "teacher-1"
	repo.quiz.quizzes["quiz-1"] = &models.Quiz{ID: "quiz-1", CourseID: "course-1"}
	repo.quiz.quizzes["quiz-2"] = &models.Quiz{ID: "quiz-2", CourseID: "course-1"}

	results := &fakeResultsService{}
	return results, NewQuizDataService(repo, results, &fakeFeedbackService{}, testLogger())
}

func TestRefreshDiscardsStaleCompletion(t *testing.T) {
	results, service := newSnapshotFixture()
	ctx := context.Background()

	slowResponse := &QuizResultsResponse{QuestionCount: 1}
	fastResponse := &QuizResultsResponse{QuestionCount: 2}

	started := make(chan struct{})
	release := make(chan struct{})

	// The first refresh blocks mid-fetch until released.
	results.push(func() (*QuizResultsResponse, error) {
		close(started)
		<-release
		return slowResponse, nil
	})
	results.push(func() (*QuizResultsResponse, error) {
		return fastResponse, nil
	})

	type outcome struct {
		snapshot *QuizSnapshot
		err      error
	}
	slowDone := make(chan outcome, 1)
	go func() {
		snapshot, err := service.Refresh(ctx, "quiz-1", "teacher-1")
		slowDone <- outcome{snapshot, err}
	}()

	<-started

	// A second refresh starts and finishes while the first is in flight.
	fast, err := service.Refresh(ctx, "quiz-1", "teacher-1")
	if err != nil {
		t.Fatalf("fast refresh: %v", err)
	}
	if fast.Results != fastResponse {
		t.Fatal("fast refresh returned wrong payload")
	}

	close(release)
	slow := <-slowDone
	if !errors.Is(slow.err, ErrSnapshotStale) {
		t.Errorf("expected ErrSnapshotStale for superseded fetch, got %v", slow.err)
	}

	// The stored snapshot is the fast one, not the late arrival.
	stored, ok, err := service.Get(ctx, "quiz-1", "teacher-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected stored snapshot")
	}
	if stored.Results != fastResponse {
		t.Errorf("stale completion overwrote the snapshot: %+v", stored)
	}
}

func TestRefreshKeepsErrorUntilNextCycle(t *testing.T) {
	results, service := newSnapshotFixture()
	ctx := context.Background()

	results.push(func() (*QuizResultsResponse, error) {
		return nil, errors.New("backend unavailable")
	})

	snapshot, err := service.Refresh(ctx, "quiz-1", "teacher-1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snapshot.Error == "" || snapshot.Results != nil {
		t.Errorf("expected error snapshot, got %+v", snapshot)
	}

	// The error stays until a new refresh replaces it.
	stored, ok, err := service.Get(ctx, "quiz-1", "teacher-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || stored.Error == "" {
		t.Errorf("expected stored error snapshot, got %+v", stored)
	}

	good := &QuizResultsResponse{QuestionCount: 3}
	results.push(func() (*QuizResultsResponse, error) { return good, nil })
	if _, err := service.Refresh(ctx, "quiz-1", "teacher-1"); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	stored, _, err = service.Get(ctx, "quiz-1", "teacher-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Error != "" || stored.Results != good {
		t.Errorf("expected recovered snapshot, got %+v", stored)
	}
}

func TestRefreshSurfacesPermissionErrors(t *testing.T) {
	results, service := newSnapshotFixture()
	ctx := context.Background()

	results.push(func() (*QuizResultsResponse, error) {
		return nil, NewPermissionError("intruder", "quiz-1", "quiz", "view results", "no access to course")
	})

	_, err := service.Refresh(ctx, "quiz-1", "intruder")
	if !IsUnauthorized(err) {
		t.Errorf("expected permission error, got %v", err)
	}
	if _, ok, err := service.Get(ctx, "quiz-1", "teacher-1"); err != nil || ok {
		t.Errorf("permission failure must not store a snapshot (ok=%v err=%v)", ok, err)
	}
}

// Snapshots carry student names, scores and feedback, so reading or dropping
// one requires the same course access as building it.
func TestSnapshotReadAndInvalidateRequireAccess(t *testing.T) {
	_, service := newSnapshotFixture()
	ctx := context.Background()

	if _, err := service.Refresh(ctx, "quiz-1", "teacher-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, _, err := service.Get(ctx, "quiz-1", "intruder"); !IsUnauthorized(err) {
		t.Errorf("expected permission error on read, got %v", err)
	}
	if err := service.Invalidate(ctx, "quiz-1", "intruder"); !IsUnauthorized(err) {
		t.Errorf("expected permission error on invalidate, got %v", err)
	}

	// The stranger's attempts left the owner's snapshot intact.
	if _, ok, err := service.Get(ctx, "quiz-1", "teacher-1"); err != nil || !ok {
		t.Errorf("expected owner snapshot to survive (ok=%v err=%v)", ok, err)
	}

	if _, _, err := service.Get(ctx, "missing-quiz", "teacher-1"); !IsNotFound(err) {
		t.Errorf("expected not-found for unknown quiz, got %v", err)
	}
}

func TestInvalidateDropsSnapshotAndInFlightFetch(t *testing.T) {
	_, service := newSnapshotFixture()
	ctx := context.Background()

	if _, err := service.Refresh(ctx, "quiz-1", "teacher-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, ok, err := service.Get(ctx, "quiz-1", "teacher-1"); err != nil || !ok {
		t.Fatalf("expected snapshot before invalidation (ok=%v err=%v)", ok, err)
	}

	if err := service.Invalidate(ctx, "quiz-1", "teacher-1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, err := service.Get(ctx, "quiz-1", "teacher-1"); err != nil || ok {
		t.Errorf("expected snapshot gone after invalidation (ok=%v err=%v)", ok, err)
	}

	// Generations are per quiz; another quiz is untouched.
	if _, err := service.Refresh(ctx, "quiz-2", "teacher-1"); err != nil {
		t.Fatalf("Refresh quiz-2: %v", err)
	}
	snapshot, ok, err := service.Get(ctx, "quiz-2", "teacher-1")
	if err != nil || !ok || snapshot.FetchedAt.After(time.Now()) {
		t.Errorf("unexpected quiz-2 snapshot: %+v (ok=%v err=%v)", snapshot, ok, err)
	}
}
