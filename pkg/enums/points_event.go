package enums

import "fmt"

// PointsEvent is a gamification event the scoring function knows how to award.
type PointsEvent string

const (
	PointsEventDayCompleted    PointsEvent = "day_completed"
	PointsEventQuizPassed      PointsEvent = "quiz_passed"
	PointsEventPilotFollowed   PointsEvent = "pilot_followed"
	PointsEventCourseCompleted PointsEvent = "course_completed"
)

var validPointsEvents = []PointsEvent{
	PointsEventDayCompleted,
	PointsEventQuizPassed,
	PointsEventPilotFollowed,
	PointsEventCourseCompleted,
}

// String implements fmt.Stringer.
func (e PointsEvent) String() string {
	return string(e)
}

// IsValid reports whether the value is known.
func (e PointsEvent) IsValid() bool {
	for _, candidate := range validPointsEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParsePointsEvent converts raw input into a PointsEvent.
func ParsePointsEvent(value string) (PointsEvent, error) {
	for _, candidate := range validPointsEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid points event %q", value)
}
