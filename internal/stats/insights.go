package stats

import (
	"sort"

	"github.com/teacherhub/quiz-service/internal/models"
)

// QuestionStat is the per-question breakdown shown on the insights tab.
type QuestionStat struct {
	QuestionID  string  `json:"question_id"`
	Text        string  `json:"text"`
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"success_rate"`
}

// QuestionStats computes attempts, correct counts and success rate for each
// question, in question order. A question nobody attempted has rate 0.
func QuestionStats(questions []models.Question, answers []StudentAnswer) []QuestionStat {
	result := make([]QuestionStat, 0, len(questions))
	for _, question := range questions {
		stat := QuestionStat{QuestionID: question.ID, Text: question.Text}
		for _, a := range answers {
			for _, r := range a.Responses {
				if r.QuestionID != question.ID {
					continue
				}
				stat.Attempts++
				if r.IsCorrect {
					stat.Correct++
				}
			}
		}
		if stat.Attempts > 0 {
			stat.SuccessRate = float64(stat.Correct) / float64(stat.Attempts) * 100
		}
		result = append(result, stat)
	}
	return result
}

// Insights is the actionable summary for one quiz.
type Insights struct {
	// FailedQuestions are the up-to-three questions with the lowest
	// success rate, worst first.
	FailedQuestions []QuestionStat `json:"failed_questions"`
	// NeedsSupport counts students scoring below 50%.
	NeedsSupport int `json:"needs_support"`
	// NotParticipating counts enrolled students without a submission.
	NotParticipating int `json:"not_participating"`
}

// BuildInsights derives the insight summary from grouped answers. Scores use
// the full question count as denominator, consistent with Score.
func BuildInsights(questions []models.Question, answers []StudentAnswer, totalEnrolled int) Insights {
	questionStats := QuestionStats(questions, answers)
	sort.SliceStable(questionStats, func(i, j int) bool {
		return questionStats[i].SuccessRate < questionStats[j].SuccessRate
	})
	if len(questionStats) > 3 {
		questionStats = questionStats[:3]
	}

	needsSupport := 0
	for _, a := range answers {
		if Score(a.Responses, len(questions)) < 50 {
			needsSupport++
		}
	}

	notParticipating := totalEnrolled - len(answers)
	if notParticipating < 0 {
		notParticipating = 0
	}

	return Insights{
		FailedQuestions:  questionStats,
		NeedsSupport:     needsSupport,
		NotParticipating: notParticipating,
	}
}

// TopicStat aggregates correctness per question topic across a course.
type TopicStat struct {
	Topic          string  `json:"topic"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"performance_percentage"`
}

// TopicPerformance rolls question correctness up by topic over every quiz
// of a course. Questions without a topic are skipped. Topics are sorted for
// deterministic output.
func TopicPerformance(quizQuestions map[string][]models.Question, rows []AnswerRow) []TopicStat {
	topicByQuestion := make(map[string]string)
	totals := make(map[string]*TopicStat)
	for _, questions := range quizQuestions {
		for _, question := range questions {
			if question.Topic == "" {
				continue
			}
			topicByQuestion[question.ID] = question.Topic
			stat, ok := totals[question.Topic]
			if !ok {
				stat = &TopicStat{Topic: question.Topic}
				totals[question.Topic] = stat
			}
			stat.TotalQuestions++
		}
	}

	for _, row := range rows {
		topic, ok := topicByQuestion[row.QuestionID]
		if !ok || !row.IsCorrect {
			continue
		}
		totals[topic].CorrectAnswers++
	}

	result := make([]TopicStat, 0, len(totals))
	for _, stat := range totals {
		if stat.TotalQuestions > 0 {
			stat.Percentage = float64(stat.CorrectAnswers) / float64(stat.TotalQuestions) * 100
		}
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Topic < result[j].Topic })
	return result
}
