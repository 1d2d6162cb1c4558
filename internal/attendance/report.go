package attendance

import (
	"sort"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// notAvailable is shown in place of a date when there is no data.
const notAvailable = "N/A"

// Stats summarizes the file. A missing file yields zero counts and "N/A" as the latest date.
func (l *Ledger) Stats(today string) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := readTable(l.path)
	if err != nil {
		return Stats{}, err
	}
	if t == nil {
		return Stats{LatestDate: notAvailable}, nil
	}
	return computeStats(t.records(), today), nil
}

// Report builds the detailed report. Returns ErrNoData when there are no rows.
func (l *Ledger) Report(today string) (*Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := readTable(l.path)
	if err != nil {
		return nil, err
	}
	if t == nil || len(t.rows) == 0 {
		return nil, ErrNoData
	}
	return buildReport(t.records(), today), nil
}

func computeStats(records []Record, today string) Stats {
	stats := Stats{TotalRecords: len(records), LatestDate: notAvailable}
	people := make(map[string]struct{})
	latest := ""
	for _, rec := range records {
		if rec.Name != "" {
			people[rec.Name] = struct{}{}
		}
		if rec.Date == today {
			stats.TodayCount++
		}
		if rec.Date > latest {
			latest = rec.Date
		}
	}
	stats.UniquePeople = len(people)
	if latest != "" {
		stats.LatestDate = latest
	}
	return stats
}

func buildReport(records []Record, today string) *Report {
	report := &Report{Stats: computeStats(records, today)}

	first, last := "", ""
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Date != "" {
			if first == "" || rec.Date < first {
				first = rec.Date
			}
			if rec.Date > last {
				last = rec.Date
			}
		}
		if rec.Name != "" {
			counts[rec.Name]++
		}
	}
	report.FirstDate, report.LastDate = notAvailable, notAvailable
	if first != "" {
		report.FirstDate, report.LastDate = first, last
	}

	report.TopAttendees = topAttendees(counts, constants.ReportTopAttendees)

	start := max(len(records)-constants.ReportRecentRecords, 0)
	report.Recent = append([]Record(nil), records[start:]...)
	return report
}

// topAttendees returns up to n names by count descending, ties by name ascending.
func topAttendees(counts map[string]int, n int) []NameCount {
	list := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		list = append(list, NameCount{Name: name, Count: count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Name < list[j].Name
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
