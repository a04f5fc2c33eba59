package stats

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is the initial and incremental "show more" batch size for
// the results view.
const DefaultPageSize = 5

// ScoreFilterKey is the sentinel filter key addressing a student's computed
// score instead of a question's answer.
const ScoreFilterKey = "score"

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Supported sort keys.
const (
	SortByName      = "studentName"
	SortBySubmitted = "submittedAt"
	SortByScore     = "score"
)

// ResultsQuery is the immutable view state of a results table: text search,
// per-question filters, the active sort and the show-more threshold. All
// transitions return a new value; any filter or sort change resets the
// threshold back to one page.
type ResultsQuery struct {
	Search       string
	SortKey      string
	SortDir      SortDirection
	Filters      map[string]string
	PageSize     int
	DisplayCount int
}

// NewResultsQuery returns the initial state: newest submissions first, one
// page visible, no filters.
func NewResultsQuery() ResultsQuery {
	return ResultsQuery{
		SortKey:      SortBySubmitted,
		SortDir:      SortDesc,
		PageSize:     DefaultPageSize,
		DisplayCount: DefaultPageSize,
	}
}

// WithSearch sets the case-insensitive student-name filter.
func (q ResultsQuery) WithSearch(search string) ResultsQuery {
	next := q
	next.Search = search
	next.DisplayCount = next.PageSize
	return next
}

// WithFilter sets the constraint for one question, or for ScoreFilterKey a
// closed "min-max" score range. A nil value clears the constraint.
func (q ResultsQuery) WithFilter(questionID string, value *string) ResultsQuery {
	next := q
	next.Filters = make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		next.Filters[k] = v
	}
	if value == nil {
		delete(next.Filters, questionID)
	} else {
		next.Filters[questionID] = *value
	}
	next.DisplayCount = next.PageSize
	return next
}

// WithSort activates a sort key. Re-selecting the active key toggles the
// direction; a new key starts ascending.
func (q ResultsQuery) WithSort(key string) ResultsQuery {
	next := q
	if q.SortKey == key && q.SortDir == SortAsc {
		next.SortDir = SortDesc
	} else {
		next.SortKey = key
		next.SortDir = SortAsc
	}
	next.DisplayCount = next.PageSize
	return next
}

// ShowMore grows the visible window by one page, bounded by the filtered
// result length: once everything is shown it is a no-op.
func (q ResultsQuery) ShowMore(total int) ResultsQuery {
	if q.DisplayCount >= total {
		return q
	}
	next := q
	next.DisplayCount += next.PageSize
	return next
}

// ResultsPage is the materialized slice of the filtered and sorted list.
type ResultsPage struct {
	Answers []StudentAnswer `json:"answers"`
	Total   int             `json:"total"`
	HasMore bool            `json:"has_more"`
}

// Apply runs the full pipeline: filter, sort, then slice to the current
// display count. The whole filtered list is materialized; the slicing is
// cosmetic batching, not server-side paging.
func (q ResultsQuery) Apply(answers []StudentAnswer, questionCount int) ResultsPage {
	filtered := make([]StudentAnswer, 0, len(answers))
	for _, a := range answers {
		if q.matches(a, questionCount) {
			filtered = append(filtered, a)
		}
	}

	q.sortAnswers(filtered, questionCount)

	count := q.DisplayCount
	if count <= 0 {
		count = DefaultPageSize
	}
	if count > len(filtered) {
		count = len(filtered)
	}

	return ResultsPage{
		Answers: filtered[:count],
		Total:   len(filtered),
		HasMore: count < len(filtered),
	}
}

// matches applies the text search AND every active filter.
func (q ResultsQuery) matches(a StudentAnswer, questionCount int) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(a.StudentName), strings.ToLower(q.Search)) {
		return false
	}
	for key, constraint := range q.Filters {
		if constraint == "" {
			continue
		}
		if key == ScoreFilterKey {
			min, max, ok := parseScoreRange(constraint)
			if !ok {
				return false
			}
			score := Score(a.Responses, questionCount)
			if score < min || score > max {
				return false
			}
			continue
		}
		if answerTo(a, key) != constraint {
			return false
		}
	}
	return true
}

func (q ResultsQuery) sortAnswers(answers []StudentAnswer, questionCount int) {
	less := func(a, b StudentAnswer) bool {
		switch q.SortKey {
		case SortByName:
			return a.StudentName < b.StudentName
		case SortByScore:
			return Score(a.Responses, questionCount) < Score(b.Responses, questionCount)
		default:
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		if q.SortDir == SortDesc {
			return less(answers[j], answers[i])
		}
		return less(answers[i], answers[j])
	})
}

// answerTo returns the student's answer to a question, or "" when the
// question was not answered.
func answerTo(a StudentAnswer, questionID string) string {
	for _, r := range a.Responses {
		if r.QuestionID == questionID {
			return r.Answer
		}
	}
	return ""
}

// parseScoreRange parses a closed "min-max" range. An omitted max defaults
// to 100. An unparsable range matches nothing.
func parseScoreRange(value string) (min, max float64, ok bool) {
	parts := strings.SplitN(value, "-", 2)
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	max = 100
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		max, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, 0, false
		}
	}
	return min, max, true
}
