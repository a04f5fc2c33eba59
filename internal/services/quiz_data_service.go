package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/stats"
	"gorm.io/gorm"
)

// ErrSnapshotStale is returned by Refresh when a newer refresh started while
// this one was still fetching; the completed result is discarded.
var ErrSnapshotStale = errors.New("snapshot superseded by newer refresh")

// QuizDataService maintains a per-quiz snapshot of results and feedback for
// the dashboard. Refreshes can overlap: each one takes a generation number
// at the start, and only the fetch carrying the current generation may
// store its outcome. A fetch that fails leaves its error in the snapshot
// until the next refresh; there is no automatic retry.
type QuizDataService interface {
	Refresh(ctx context.Context, quizID, userID string) (*QuizSnapshot, error)
	Get(ctx context.Context, quizID, userID string) (*QuizSnapshot, bool, error)
	Invalidate(ctx context.Context, quizID, userID string) error
}

// QuizSnapshot is one consistent view of a quiz's results and feedback.
// Error is set when the producing fetch failed; Results and Feedback are
// nil in that case.
type QuizSnapshot struct {
	QuizID     string                 `json:"quiz_id"`
	Results    *QuizResultsResponse   `json:"results,omitempty"`
	Feedback   []stats.FeedbackRecord `json:"feedback,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Generation uint64                 `json:"generation"`
	FetchedAt  time.Time              `json:"fetched_at"`
}

type quizDataService struct {
	repo     repositories.Repository
	results  ResultsService
	feedback FeedbackService
	logger   *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
	snapshots   map[string]*QuizSnapshot
}

func NewQuizDataService(repo repositories.Repository, results ResultsService, feedback FeedbackService, logger *slog.Logger) QuizDataService {
	return &quizDataService{
		repo:        repo,
		results:     results,
		feedback:    feedback,
		logger:      logger,
		generations: make(map[string]uint64),
		snapshots:   make(map[string]*QuizSnapshot),
	}
}

func (s *quizDataService) Refresh(ctx context.Context, quizID, userID string) (*QuizSnapshot, error) {
	generation := s.nextGeneration(quizID)

	snapshot := &QuizSnapshot{
		QuizID:     quizID,
		Generation: generation,
		FetchedAt:  time.Now(),
	}

	results, err := s.results.GetResults(ctx, quizID, userID, stats.NewResultsQuery())
	if err == nil {
		snapshot.Results = results
		snapshot.Feedback, err = s.feedback.GetImportedFeedback(ctx, quizID, userID)
	}
	if err != nil {
		// Permission and not-found errors surface to the caller instead
		// of poisoning the snapshot.
		if IsUnauthorized(err) || IsNotFound(err) {
			return nil, err
		}
		snapshot.Results = nil
		snapshot.Feedback = nil
		snapshot.Error = err.Error()
	}

	if !s.store(quizID, generation, snapshot) {
		s.logger.Debug("Discarding stale quiz snapshot", "quiz_id", quizID, "generation", generation)
		return nil, ErrSnapshotStale
	}
	return snapshot, nil
}

// Get returns the stored snapshot. Snapshots are keyed by quiz id only, so
// the caller's course access is verified before handing one out.
func (s *quizDataService) Get(ctx context.Context, quizID, userID string) (*QuizSnapshot, bool, error) {
	if err := s.checkAccess(ctx, quizID, userID, "read snapshot"); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[quizID]
	return snapshot, ok, nil
}

// Invalidate drops the stored snapshot and advances the generation so any
// in-flight fetch is discarded on completion.
func (s *quizDataService) Invalidate(ctx context.Context, quizID, userID string) error {
	if err := s.checkAccess(ctx, quizID, userID, "invalidate snapshot"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[quizID]++
	delete(s.snapshots, quizID)
	return nil
}

func (s *quizDataService) checkAccess(ctx context.Context, quizID, userID, action string) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	canAccess, err := s.repo.Course().CanAccess(ctx, quiz.CourseID, userID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return NewPermissionError(userID, quizID, "quiz", action, "no access to course")
	}
	return nil
}

func (s *quizDataService) nextGeneration(quizID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[quizID]++
	return s.generations[quizID]
}

// store keeps the snapshot only when no newer refresh has started since.
func (s *quizDataService) store(quizID string, generation uint64, snapshot *QuizSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[quizID] != generation {
		return false
	}
	s.snapshots[quizID] = snapshot
	return true
}
