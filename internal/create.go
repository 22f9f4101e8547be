package planner

import "fmt"

const (
	maxTitleLen   = 200
	maxDetailsLen = 2000
	maxTypeLen    = 100
)

// TodoCreate carries the fields of a new todo.
type TodoCreate struct {
	Title    string `json:"title"`
	Urgency  Level  `json:"urgency"`
	Priority Level  `json:"priority"`
}

// Validate checks the payload before it reaches the store.
func (c TodoCreate) Validate() error {
	if c.Title == "" || len(c.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, maxTitleLen)
	}
	if !c.Urgency.Valid() {
		return fmt.Errorf("%w: urgency must be %q or %q", ErrInvalidInput, LevelHigh, LevelLow)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("%w: priority must be %q or %q", ErrInvalidInput, LevelHigh, LevelLow)
	}
	return nil
}

// HorizonCreate carries the fields of a new horizon item.
type HorizonCreate struct {
	Title   string `json:"title"`
	Details string `json:"details"`
	Type    string `json:"type"`
	Date    string `json:"horizon_date"`
}

// Validate checks the payload before it reaches the store.
func (c HorizonCreate) Validate() error {
	if c.Title == "" || len(c.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, maxTitleLen)
	}
	if c.Details == "" || len(c.Details) > maxDetailsLen {
		return fmt.Errorf("%w: details must be 1-%d characters", ErrInvalidInput, maxDetailsLen)
	}
	if len(c.Type) > maxTypeLen {
		return fmt.Errorf("%w: type must be at most %d characters", ErrInvalidInput, maxTypeLen)
	}
	if c.Date != "" && !isDate(c.Date) {
		return fmt.Errorf("%w: horizon_date %q (want YYYY-MM-DD)", ErrInvalidInput, c.Date)
	}
	return nil
}

// EventCreate carries the fields of a new bookmarked event.
type EventCreate struct {
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Title     string   `json:"event_title"`
	Duration  int      `json:"duration"`
	Attendees []string `json:"attendees"`
}

// Validate checks the payload before it reaches the store.
func (c EventCreate) Validate() error {
	if !isDate(c.Date) {
		return fmt.Errorf("%w: date %q (want YYYY-MM-DD)", ErrInvalidInput, c.Date)
	}
	if c.Time == "" {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if c.Title == "" || len(c.Title) > 500 {
		return fmt.Errorf("%w: event_title must be 1-500 characters", ErrInvalidInput)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	return nil
}
