package bracket

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

var (
	ErrInvalidStatus     = errors.New("invalid tournament status")
	ErrInvalidTransition = errors.New("invalid tournament status transition")
)

// transitions lists every allowed from -> to pair. Staying in place is
// allowed so bracket data can change without a status change.
var transitions = map[Status]map[Status]bool{
	StatusCreated:    {StatusCreated: true, StatusInProgress: true, StatusFinished: true},
	StatusInProgress: {StatusInProgress: true, StatusFinished: true},
	StatusFinished:   {StatusFinished: true},
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// CheckTransition returns ErrInvalidTransition (or ErrInvalidStatus) when
// moving from -> to is not allowed.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Common values for Type. The engine stores whatever tag it is given.
const (
	SingleElimination = "single_elimination"
	DoubleElimination = "double_elimination"
)

// TimeLayout is fixed width so stored timestamps compare correctly as text.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Tournament is a fully decoded tournament record.
type Tournament struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	League      string    `json:"league"`
	Status      Status    `json:"status"`
	DateCreated time.Time `json:"date_created"`
	LastUpdated time.Time `json:"last_updated"`
	Revision    int64     `json:"revision"`
	Data        Document  `json:"data"`
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
