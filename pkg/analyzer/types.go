// Package analyzer computes descriptive aggregates over parsed chat records.
package analyzer

import (
	"time"
)

// Overall selects every record instead of a single participant.
const Overall = "Overall"

// AggregateName identifies one aggregate computation.
type AggregateName string

const (
	AggregateStats       AggregateName = "stats"
	AggregateBusiest     AggregateName = "busiest_users"
	AggregateTimeline    AggregateName = "monthly_timeline"
	AggregateWeekdays    AggregateName = "weekday_activity"
	AggregateMonths      AggregateName = "month_activity"
	AggregateHeatmap     AggregateName = "activity_heatmap"
	AggregateVocabulary  AggregateName = "vocabulary"
	AggregateCommonWords AggregateName = "common_words"
	AggregateEmoji       AggregateName = "emoji_usage"
)

// AllAggregates lists every aggregate in report order.
var AllAggregates = []AggregateName{
	AggregateStats,
	AggregateBusiest,
	AggregateTimeline,
	AggregateWeekdays,
	AggregateMonths,
	AggregateHeatmap,
	AggregateVocabulary,
	AggregateCommonWords,
	AggregateEmoji,
}

// Stats holds the headline counts for a record set.
type Stats struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

// SenderCount is a sender with its message count.
type SenderCount struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

// SenderShare is a sender with its share of all messages, in percent
// rounded to two decimals.
type SenderShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Busiest is the busiest-users chart and its full share table.
type Busiest struct {
	Top   []SenderCount `json:"top"`
	Table []SenderShare `json:"table"`
}

// TimelinePoint is the message count for one calendar month.
type TimelinePoint struct {
	Year     int    `json:"year"`
	MonthNum int    `json:"month_num"`
	Month    string `json:"month"`
	// Label is "<MonthName>-<Year>", e.g. "January-2023".
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCount is a labelled count, used for weekday and month activity.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Heatmap is a weekday by hour grid of message counts divided by the
// largest cell. Rows follow Weekdays, columns are hours 0 through 23.
type Heatmap struct {
	Weekdays [7]string      `json:"weekdays"`
	Cells    [7][24]float64 `json:"cells"`
}

// WordCount is a word with its frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// EmojiCount is an emoji with its frequency and share of all emoji.
type EmojiCount struct {
	Emoji      string  `json:"emoji"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnalysisResult bundles the aggregates computed for one participant
// selection. Aggregates that were not selected are left nil and encode as
// null; selected ones encode as their value, empty slices included.
type AnalysisResult struct {
	// Participant is the selection the aggregates were computed for.
	Participant string `json:"participant"`
	// Participants is the selector list: Overall followed by every sender.
	Participants []string `json:"participants"`
	// Records is the number of records that matched the selection.
	Records int `json:"records"`
	// Aggregates lists the computed aggregates in report order.
	Aggregates []AggregateName `json:"aggregates"`

	Stats       *Stats          `json:"stats"`
	Busiest     *Busiest        `json:"busiest_users"`
	Timeline    []TimelinePoint `json:"monthly_timeline"`
	Weekdays    []CategoryCount `json:"weekday_activity"`
	Months      []CategoryCount `json:"month_activity"`
	Heatmap     *Heatmap        `json:"activity_heatmap"`
	Vocabulary  *VocabularyText `json:"vocabulary"`
	CommonWords []WordCount     `json:"common_words"`
	Emoji       []EmojiCount    `json:"emoji_usage"`

	StartTime time.Time `json:"-"`
	EndTime   time.Time `json:"-"`
}

// VocabularyText is the concatenated text used for word-cloud rendering.
type VocabularyText struct {
	Text string `json:"text"`
	// OK is false when no eligible text remained.
	OK bool `json:"ok"`
}

// Has reports whether the named aggregate was computed.
func (r *AnalysisResult) Has(name AggregateName) bool {
	for _, n := range r.Aggregates {
		if n == name {
			return true
		}
	}
	return false
}

// Duration returns how long the analysis took.
func (r *AnalysisResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
