package component

// FeedbackCategory tags feedback independently of how it is displayed
type FeedbackCategory uint8

const (
	FeedbackPositive FeedbackCategory = iota
	FeedbackWarning
	FeedbackNegative
)

func (c FeedbackCategory) String() string {
	switch c {
	case FeedbackPositive:
		return "positive"
	case FeedbackWarning:
		return "warning"
	case FeedbackNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// Recorded reports whether feedback of this category counts as an emotional response
func (c FeedbackCategory) Recorded() bool {
	return c == FeedbackWarning || c == FeedbackNegative
}

// Feedback is a message surfaced to the user
type Feedback struct {
	Text     string
	Category FeedbackCategory
}
