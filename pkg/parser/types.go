// Package parser turns exported chat-log text into ordered message records.
package parser

import "time"

// GroupNotification is the sender assigned to entries that carry no
// "sender: body" separator, such as group events.
const GroupNotification = "Group Notification"

// Record is one parsed chat message. The calendar fields are derived from
// Timestamp by NewRecord and must not be changed independently.
type Record struct {
	// Timestamp is the local date and time of the message (no timezone).
	Timestamp time.Time `json:"timestamp"`
	// Sender is the participant display name, or GroupNotification.
	Sender string `json:"sender"`
	// Body is the trimmed message text.
	Body string `json:"body"`

	Year     int    `json:"year"`
	Month    string `json:"month"`
	MonthNum int    `json:"month_num"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	DateOnly string `json:"date_only"`
	Weekday  string `json:"weekday"`
}

// NewRecord builds a Record and derives its calendar fields from ts.
func NewRecord(ts time.Time, sender, body string) Record {
	return Record{
		Timestamp: ts,
		Sender:    sender,
		Body:      body,
		Year:      ts.Year(),
		Month:     ts.Month().String(),
		MonthNum:  int(ts.Month()),
		Day:       ts.Day(),
		Hour:      ts.Hour(),
		Minute:    ts.Minute(),
		DateOnly:  ts.Format("2006-01-02"),
		Weekday:   ts.Weekday().String(),
	}
}

// IsSystem reports whether the record is a group notification rather than
// a participant message.
func (r Record) IsSystem() bool {
	return r.Sender == GroupNotification
}

// RawEntry is a single bracketed entry before timestamp conversion.
type RawEntry struct {
	// Index is the 0-based position of the entry in the export.
	Index int
	// Timestamp is the literal between the brackets.
	Timestamp string
	// Rest is everything after the marker up to the next marker, untrimmed.
	Rest string
}

// DropReason explains why an entry was or was not kept.
type DropReason string

const (
	ReasonKept          DropReason = "kept"
	ReasonSenderKeyword DropReason = "sender_keyword"
	ReasonGroupLabel    DropReason = "group_label"
	ReasonSystemBody    DropReason = "system_body"
	ReasonBlankSender   DropReason = "blank_sender"
)

// Decision records the outcome of filtering one entry.
type Decision struct {
	Entry  RawEntry
	Record Record
	Reason DropReason
	// Match is the keyword or pattern that caused the drop, if any.
	Match string
}

// Result is the detailed output of a parse.
type Result struct {
	// Records are the retained messages in source order.
	Records []Record
	// Decisions has one element per matched entry, in source order.
	Decisions []Decision
	// Entries is the number of bracketed entries found.
	Entries int
}

// Dropped returns how many entries were discarded per reason.
func (r *Result) Dropped() map[DropReason]int {
	counts := make(map[DropReason]int)
	for _, d := range r.Decisions {
		if d.Reason != ReasonKept {
			counts[d.Reason]++
		}
	}
	return counts
}
