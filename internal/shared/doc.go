// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides a capturing slog handler and fixtures of
// daily bike-sharing records for tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    records := testutil.SampleRecords()
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "dataset loaded")
//	}
package shared
