package model

// Question is one prepared-quiz item. Options always holds exactly four
// entries and CorrectAnswerIndex is within [0,3]; both are promised by the
// generation schema and re-checked when parsing the model output.
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// TestQuestion is a final-test item: a Question plus a short explanation
// of the correct answer.
type TestQuestion struct {
	Question
	Explanation string `json:"explanation"`
}

// Slide is one page of a generated presentation.
type Slide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Lesson is the authoring and delivery unit. StudentText is the single
// grounding source for every derived artifact and for chat answers;
// regenerating it does not invalidate artifacts already stored.
type Lesson struct {
	UUIDBase
	Title          string `gorm:"size:255;not null" json:"title"`
	Subtitle       string `gorm:"size:255" json:"subtitle"`
	OwnerID        uint   `gorm:"index;not null" json:"ownerId"`
	StudentText    string `gorm:"type:longtext" json:"studentText"`
	VideoURL       string `gorm:"size:512" json:"videoUrl"`
	ChatbotPersona string `gorm:"type:text" json:"chatbotPersona"`

	PreparedQuiz []Question     `gorm:"serializer:json" json:"preparedQuiz,omitempty"`
	FinalTest    []TestQuestion `gorm:"serializer:json" json:"finalTest,omitempty"`
	Presentation []Slide        `gorm:"serializer:json" json:"presentation,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
