package analyzer

import (
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// DefaultTopUsers is the number of senders in the busiest-users chart.
const DefaultTopUsers = 5

// MostBusyUsers returns the five most active senders and the share table
// for every sender in the selection.
func MostBusyUsers(participant string, records []parser.Record) Busiest {
	return busiestUsers(selectRecords(participant, records), DefaultTopUsers)
}

func busiestUsers(records []parser.Record, n int) Busiest {
	b := Busiest{
		Top:   []SenderCount{},
		Table: []SenderShare{},
	}
	if len(records) == 0 {
		return b
	}

	c := newCounter()
	for _, r := range records {
		c.add(r.Sender)
	}

	for i, sender := range c.ranked() {
		count := c.counts[sender]
		if i < n {
			b.Top = append(b.Top, SenderCount{Sender: sender, Count: count})
		}
		b.Table = append(b.Table, SenderShare{
			Name:       sender,
			Percentage: percentage(count, len(records)),
		})
	}
	return b
}
