package stats

// GroupAnswers pivots flat per-question rows into one StudentAnswer per
// distinct student. Students appear in order of their first row; responses
// within a student keep row order. The first row also supplies the
// student's name, email and submission timestamp. The input is not
// mutated, so grouping the same rows twice yields identical output.
func GroupAnswers(rows []AnswerRow) []StudentAnswer {
	grouped := make([]StudentAnswer, 0)
	index := make(map[string]int, len(rows))

	for _, row := range rows {
		response := Response{
			QuestionID: row.QuestionID,
			Answer:     row.Answer,
			IsCorrect:  row.IsCorrect,
		}
		if i, ok := index[row.StudentID]; ok {
			grouped[i].Responses = append(grouped[i].Responses, response)
			continue
		}
		index[row.StudentID] = len(grouped)
		grouped = append(grouped, StudentAnswer{
			StudentID:    row.StudentID,
			StudentName:  row.StudentName,
			StudentEmail: row.StudentEmail,
			SubmittedAt:  row.CreatedAt,
			Responses:    []Response{response},
		})
	}

	return grouped
}
