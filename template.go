package raido

// Template is a question/answer pair of render rules referencing a model's
// fields by name ({{FieldName}}). Cloze models additionally embed
// {{cN::text}} markers in field values; see Note.Cards. The browser formats
// are optional overrides used by the importing application's card browser.
// Ordinals are assigned by position at serialization time.
type Template struct {
	Name                  string
	QuestionFormat        string
	AnswerFormat          string
	BrowserQuestionFormat string
	BrowserAnswerFormat   string
}

// NewTemplate returns a template with the given name and formats.
func NewTemplate(name, questionFormat, answerFormat string) Template {
	return Template{
		Name:           name,
		QuestionFormat: questionFormat,
		AnswerFormat:   answerFormat,
	}
}
