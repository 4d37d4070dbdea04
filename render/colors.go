package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/composure/component"
)

// RGB palette
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbHudText    = tcell.NewRGBColor(255, 255, 255) // White
	RgbHudDim     = tcell.NewRGBColor(180, 180, 180) // Brighter gray

	RgbUnitStatic    = tcell.NewRGBColor(100, 150, 255) // Normal Blue
	RgbUnitMobile    = tcell.NewRGBColor(0, 200, 200)   // Vibrant Cyan
	RgbUnitCompleted = tcell.NewRGBColor(0, 130, 0)     // Dark Green

	RgbFeedbackPositive = tcell.NewRGBColor(50, 255, 50) // Bright Green
	RgbFeedbackWarning  = tcell.NewRGBColor(255, 165, 0) // Orange
	RgbFeedbackNegative = tcell.NewRGBColor(255, 80, 80) // Normal Red
	RgbTimePressure     = tcell.NewRGBColor(255, 0, 0)   // Error Red
	RgbRating           = tcell.NewRGBColor(255, 255, 0) // Bright Yellow
)

func feedbackColor(c component.FeedbackCategory) tcell.Color {
	switch c {
	case component.FeedbackWarning:
		return RgbFeedbackWarning
	case component.FeedbackNegative:
		return RgbFeedbackNegative
	default:
		return RgbFeedbackPositive
	}
}
