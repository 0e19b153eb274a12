package model

import (
	"fmt"
	"time"
)

// DailyEntry holds the four punches recorded for one calendar day.
// Unset punches are nil and serialize as JSON null.
type DailyEntry struct {
	Date       string  `json:"date"`
	InTime     *string `json:"inTime"`
	StartBreak *string `json:"startBreak"`
	EndBreak   *string `json:"endBreak"`
	OutTime    *string `json:"outTime"`
}

// NewDailyEntry returns an entry for date with every punch unset.
func NewDailyEntry(date string) DailyEntry {
	return DailyEntry{Date: date}
}

// Get returns the value stored for f, or nil if it is not set.
func (e DailyEntry) Get(f Field) *string {
	switch f {
	case FieldInTime:
		return e.InTime
	case FieldStartBreak:
		return e.StartBreak
	case FieldEndBreak:
		return e.EndBreak
	case FieldOutTime:
		return e.OutTime
	}
	return nil
}

// Set overwrites the punch for f with value.
func (e *DailyEntry) Set(f Field, value string) {
	v := value
	switch f {
	case FieldInTime:
		e.InTime = &v
	case FieldStartBreak:
		e.StartBreak = &v
	case FieldEndBreak:
		e.EndBreak = &v
	case FieldOutTime:
		e.OutTime = &v
	}
}

// Document is the top-level structure of the store file.
type Document struct {
	Entries     []DailyEntry `json:"entries"`
	LastUpdated *time.Time   `json:"lastUpdated,omitempty"`
}

// Field names one of the four punches of a DailyEntry.
type Field string

const (
	FieldInTime     Field = "inTime"
	FieldStartBreak Field = "startBreak"
	FieldEndBreak   Field = "endBreak"
	FieldOutTime    Field = "outTime"
)

// Fields lists the punches in the order they happen during a day.
var Fields = []Field{FieldInTime, FieldStartBreak, FieldEndBreak, FieldOutTime}

// InvalidFieldError is returned for a field name outside Fields.
type InvalidFieldError struct {
	Name string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q (expected inTime|startBreak|endBreak|outTime)", e.Name)
}

// ParseField validates name against the known punches.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &InvalidFieldError{Name: name}
}

// Label returns a human-readable name, e.g. "Start Break".
func (f Field) Label() string {
	switch f {
	case FieldInTime:
		return "In Time"
	case FieldStartBreak:
		return "Start Break"
	case FieldEndBreak:
		return "End Break"
	case FieldOutTime:
		return "Out Time"
	}
	return string(f)
}
