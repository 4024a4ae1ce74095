package models

import "time"

// Weekday names a day of the schedule grid. The upstream questionnaire feed
// numbers days 1=Sunday through 7=Saturday.
type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Weekdays lists the seven canonical weekdays in feed order.
var Weekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var feedWeekdays = map[int]Weekday{
	1: Sunday, 2: Monday, 3: Tuesday, 4: Wednesday, 5: Thursday, 6: Friday, 7: Saturday,
}

// WeekdayFromFeed maps the upstream 1..7 day number onto a Weekday.
func WeekdayFromFeed(day int) (Weekday, bool) {
	w, ok := feedWeekdays[day]
	return w, ok
}

// WeekdayOf resolves the Weekday of an instant in its own location. Callers
// normalize to the reference timezone before asking.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String())
}

// TimeSlot is one of the three fixed daily questionnaire slots.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "10:00"
	SlotAfternoon TimeSlot = "14:00"
	SlotEvening   TimeSlot = "18:00"
)

// TimeSlots lists the canonical slots in display order.
var TimeSlots = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening}

var feedSlots = map[int]TimeSlot{10: SlotMorning, 14: SlotAfternoon, 18: SlotEvening}

// SlotFromFeed maps an upstream wall-clock hour onto a TimeSlot.
func SlotFromFeed(hour int) (TimeSlot, bool) {
	s, ok := feedSlots[hour]
	return s, ok
}

// Hour returns the slot's wall-clock hour.
func (s TimeSlot) Hour() int {
	switch s {
	case SlotMorning:
		return 10
	case SlotAfternoon:
		return 14
	case SlotEvening:
		return 18
	}
	return 0
}

// QuestionnaireItem is one scheduled self-report question. Immutable once
// fetched; the source of truth for the schedule grid.
type QuestionnaireItem struct {
	QuestionID int        `json:"question_id"`
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	Weekdays   []Weekday  `json:"weekdays"`
	TimesOfDay []TimeSlot `json:"times_of_day"`
}

// AnswerRecord is one row of a participant's answer log. A nil Answer means
// the question was shown but not answered at capture time.
type AnswerRecord struct {
	QuestionID int       `json:"question_id"`
	Answer     *int      `json:"answer"`
	Timestamp  time.Time `json:"timestamp"`
}

// Valid reports whether the record carries a usable answer: present and on
// the 0..4 response scale. Anything else counts as non-response.
func (a AnswerRecord) Valid() bool {
	return a.Answer != nil && *a.Answer >= 0 && *a.Answer <= 4
}
