package ticket

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"helpdesk/internal/domain/queue"
)

const dateLayout = "2006-01-02"

// filter narrows the list output. Empty fields match everything. Status and
// priority only match writes that carry them, so setting either hides
// conversation entries.
type filter struct {
	statuses   []queue.TicketStatus
	priorities []queue.Priority
	from, to   time.Time
	query      string
}

func newFilter(statuses, priorities []string, from, to, query string) (filter, error) {
	var f filter
	for _, s := range statuses {
		st := queue.TicketStatus(strings.ToLower(s))
		if err := st.Validate(); err != nil {
			return filter{}, err
		}
		f.statuses = append(f.statuses, st)
	}
	for _, p := range priorities {
		pr := queue.Priority(strings.ToLower(p))
		if err := pr.Validate(); err != nil {
			return filter{}, err
		}
		f.priorities = append(f.priorities, pr)
	}

	var err error
	if from != "" {
		if f.from, err = time.ParseInLocation(dateLayout, from, time.Local); err != nil {
			return filter{}, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if f.to, err = time.ParseInLocation(dateLayout, to, time.Local); err != nil {
			return filter{}, fmt.Errorf("--to: %w", err)
		}
		// Inclusive of the whole day.
		f.to = f.to.AddDate(0, 0, 1)
	}
	if !f.from.IsZero() && !f.to.IsZero() && !f.from.Before(f.to) {
		return filter{}, fmt.Errorf("--from %s is after --to %s", from, to)
	}

	f.query = strings.ToLower(strings.TrimSpace(query))
	return f, nil
}

func (f filter) apply(items []queue.Item) []queue.Item {
	out := make([]queue.Item, 0, len(items))
	for _, it := range items {
		if f.match(it) {
			out = append(out, it)
		}
	}
	return out
}

func (f filter) match(it queue.Item) bool {
	if len(f.statuses) > 0 {
		st, ok := ticketStatus(it)
		if !ok || !slices.Contains(f.statuses, st) {
			return false
		}
	}
	if len(f.priorities) > 0 {
		p, ok := it.Payload.(queue.TicketPayload)
		if !ok || !slices.Contains(f.priorities, p.Priority) {
			return false
		}
	}
	if !f.from.IsZero() && it.CreatedAt.Before(f.from) {
		return false
	}
	if !f.to.IsZero() && !it.CreatedAt.Before(f.to) {
		return false
	}
	if f.query != "" && !strings.Contains(strings.ToLower(searchText(it)), f.query) {
		return false
	}
	return true
}

func ticketStatus(it queue.Item) (queue.TicketStatus, bool) {
	switch p := it.Payload.(type) {
	case queue.TicketPayload:
		return p.Status, true
	case queue.StatusPayload:
		return p.Status, true
	}
	return "", false
}

func searchText(it queue.Item) string {
	if p, ok := it.Payload.(queue.TicketPayload); ok {
		return p.Title + "\n" + p.Description
	}
	return summary(it)
}
