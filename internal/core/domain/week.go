package domain

import "time"

// ScheduledActivity is an activity enriched with the names of its parents,
// ready to be placed on the weekly grid.
type ScheduledActivity struct {
	Activity
	ObjectiveDescription string   `json:"objective_description"`
	RoleID               int64    `json:"role_id"`
	RoleName             string   `json:"role_name"`
	Priority             Priority `json:"priority"`
}

// DayColumn holds one day of the grid, ordered by time of day.
type DayColumn struct {
	Day        Day                 `json:"day"`
	Activities []ScheduledActivity `json:"activities"`
}

// WeekView is the seven-column grid rendered on screen and in the PDF export.
type WeekView struct {
	Days []DayColumn `json:"days"`
}

// Total returns the number of scheduled activities across all days.
func (w WeekView) Total() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Activities)
	}
	return n
}

// Document is what the export adapter turns into a file.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Week        WeekView
}

// Artifact is a finished export ready to be downloaded.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	// URL is set when the artifact was also archived to object storage.
	URL string
}
