package domain

// ValidateQuiz enforces the quiz schema at the repository boundary: a quiz has
// a title, a description, and at least one question; every question has text,
// at least two non-empty options, and exactly one option flagged correct.
func ValidateQuiz(q Quiz) error {
	if q.Title == "" {
		return Validationf("title is required")
	}
	if q.Description == "" {
		return Validationf("description is required")
	}
	if q.CreatorID == "" {
		return Validationf("creatorId is required")
	}
	if len(q.Questions) == 0 {
		return Validationf("quiz must have at least one question")
	}
	for i, question := range q.Questions {
		if question.Text == "" {
			return Validationf("question %d: text is required", i)
		}
		if len(question.Options) < 2 {
			return Validationf("question %d: at least two options required", i)
		}
		correct := 0
		for j, option := range question.Options {
			if option.Text == "" {
				return Validationf("question %d option %d: text is required", i, j)
			}
			if option.Correct {
				correct++
			}
		}
		if correct != 1 {
			return Validationf("question %d: exactly one correct option required, got %d", i, correct)
		}
	}
	return nil
}

// CorrectIndex returns the position of the question's canonical correct
// option: the first option flagged correct, or -1 when none is. The -1 never
// matches a submitted answer, so such a question cannot grade as correct.
func CorrectIndex(q Question) int {
	for i, option := range q.Options {
		if option.Correct {
			return i
		}
	}
	return -1
}
