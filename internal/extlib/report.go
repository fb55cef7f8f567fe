//
// report.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"fmt"
	"strings"
)

// ReportItem is one entry outcome keyed by title and authors.
type ReportItem struct {
	Title   string
	Authors []string
}

// DownloadReport aggregates bulk-download outcomes. Concat is associative
// with the zero value as identity; item order inside each list follows the
// fold order (feed order).
//
// A nil *DownloadReport means "nothing was attempted" and is distinct from a
// present report with empty lists.
type DownloadReport struct {
	Success   []ReportItem
	Failed    []ReportItem
	Empty     []ReportItem
	Ambiguous []ReportItem
}

func successReport(title string, authors []string) *DownloadReport {
	return &DownloadReport{Success: []ReportItem{{title, authors}}}
}

func failedReport(title string, authors []string) *DownloadReport {
	return &DownloadReport{Failed: []ReportItem{{title, authors}}}
}

func emptyReport(title string, authors []string) *DownloadReport {
	return &DownloadReport{Empty: []ReportItem{{title, authors}}}
}

func ambiguousReport(title string, authors []string) *DownloadReport {
	return &DownloadReport{Ambiguous: []ReportItem{{title, authors}}}
}

// Concat fold other into r and return the combined report.
func (r *DownloadReport) Concat(other *DownloadReport) *DownloadReport {
	if r == nil {
		return other
	}

	if other == nil {
		return r
	}

	return &DownloadReport{
		Success:   append(r.Success, other.Success...),
		Failed:    append(r.Failed, other.Failed...),
		Empty:     append(r.Empty, other.Empty...),
		Ambiguous: append(r.Ambiguous, other.Ambiguous...),
	}
}

// HasResult reports whether anything was actually attempted: at least one
// success, failure or ambiguous skip. Batches of empty-only outcomes do not
// count; they trigger no user notification.
func (r *DownloadReport) HasResult() bool {
	if r == nil {
		return false
	}

	return len(r.Success) > 0 || len(r.Failed) > 0 || len(r.Ambiguous) > 0
}

// Message renders a short human-readable summary for notifications.
func (r *DownloadReport) Message() string {
	if r == nil {
		return "nothing to download"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "downloaded %d", len(r.Success))

	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", failed %d: %s", len(r.Failed), itemTitles(r.Failed))
	}

	if len(r.Ambiguous) > 0 {
		fmt.Fprintf(&b, ", skipped (ambiguous links) %d: %s", len(r.Ambiguous), itemTitles(r.Ambiguous))
	}

	return b.String()
}

func itemTitles(items []ReportItem) string {
	titles := make([]string, 0, len(items))
	for _, i := range items {
		titles = append(titles, i.Title)
	}

	return strings.Join(titles, "; ")
}
