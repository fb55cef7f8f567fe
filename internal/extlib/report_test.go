//
// report_test.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"testing"

	"github.com/kmwlk/libsync/internal/assert"
)

func TestReportConcatIdentity(t *testing.T) {
	t.Parallel()

	report := successReport("one", nil).Concat(failedReport("two", nil))

	assert.Equal(t, report.Concat(nil), report)
	assert.Equal(t, (*DownloadReport)(nil).Concat(report), report)
	assert.Nil(t, (*DownloadReport)(nil).Concat(nil))
}

func TestReportConcatCounts(t *testing.T) {
	t.Parallel()

	a := successReport("a", nil).
		Concat(failedReport("b", nil)).
		Concat(emptyReport("c", nil))
	b := successReport("d", nil).
		Concat(ambiguousReport("e", nil))

	ab := a.Concat(b)
	ba := b.Concat(a)

	// counts are order-independent, title lists are not
	assert.Equal(t, len(ab.Success), len(ba.Success))
	assert.Equal(t, len(ab.Failed), len(ba.Failed))
	assert.Equal(t, len(ab.Empty), len(ba.Empty))
	assert.Equal(t, len(ab.Ambiguous), len(ba.Ambiguous))

	assert.Equal(t, len(ab.Success), 2)
	assert.Equal(t, ab.Success[0].Title, "a")
	assert.Equal(t, ab.Success[1].Title, "d")
}

func TestReportHasResult(t *testing.T) {
	t.Parallel()

	assert.True(t, !(*DownloadReport)(nil).HasResult())
	assert.True(t, !emptyReport("a", nil).HasResult())
	assert.True(t, successReport("a", nil).HasResult())
	assert.True(t, failedReport("a", nil).HasResult())
	assert.True(t, ambiguousReport("a", nil).HasResult())
}

func TestReportMessage(t *testing.T) {
	t.Parallel()

	report := successReport("one", nil).
		Concat(failedReport("two", nil)).
		Concat(failedReport("three", nil)).
		Concat(ambiguousReport("four", nil))

	msg := report.Message()
	assert.Equal(t, msg, "downloaded 1, failed 2: two; three, skipped (ambiguous links) 1: four")
}
