package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority ranks an objective inside its role.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Label returns the display name of the priority, or "" for an invalid value.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return ""
	}
}

// Day is a weekday name. Only the values in Days are valid.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the week in display order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// dayAliases maps lower-cased input names to the canonical day. The Spanish
// names are accepted because existing rows store them.
var dayAliases = map[string]Day{
	"monday": Monday, "tuesday": Tuesday, "wednesday": Wednesday, "thursday": Thursday,
	"friday": Friday, "saturday": Saturday, "sunday": Sunday,
	"lunes": Monday, "martes": Tuesday, "miércoles": Wednesday, "miercoles": Wednesday,
	"jueves": Thursday, "viernes": Friday, "sábado": Saturday, "sabado": Saturday, "domingo": Sunday,
}

// ParseDay resolves a day name (case-insensitive, English or Spanish).
func ParseDay(s string) (Day, bool) {
	d, ok := dayAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Valid reports whether d is one of the canonical weekday names.
func (d Day) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// Index returns the position of d in Days, or -1.
func (d Day) Index() int {
	for i, day := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

const (
	FirstSlotHour = 6
	LastSlotHour  = 22
)

// TimeSlots returns the canonical hourly slots "06:00" .. "22:00".
func TimeSlots() []string {
	slots := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// ParseTimeSlot accepts "H:MM" or "HH:MM" and returns the canonical
// zero-padded slot. Only whole hours between FirstSlotHour and LastSlotHour
// are accepted.
func ParseTimeSlot(s string) (string, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return "", false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < FirstSlotHour || h > LastSlotHour {
		return "", false
	}
	if mm != "00" {
		return "", false
	}
	return fmt.Sprintf("%02d:00", h), true
}

// SlotMinutes converts an "H:MM" / "HH:MM" string to minutes after midnight.
// Unparseable values sort last.
func SlotMinutes(s string) int {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 24 * 60
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return 24 * 60
	}
	return h*60 + m
}

// Role is a life area the user organises time around.
type Role struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Objective is a prioritised goal that belongs to one role.
type Objective struct {
	ID          int64     `json:"id"`
	RoleID      int64     `json:"role_id"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity is a completable task scheduled on a weekday slot under one objective.
type Activity struct {
	ID          int64     `json:"id"`
	ObjectiveID int64     `json:"objective_id"`
	Description string    `json:"description"`
	Day         Day       `json:"day"`
	Time        string    `json:"time"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
