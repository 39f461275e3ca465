package sorter

// Outcome aggregates the per-file counters of one reorganization run. It is
// the precondition signal downstream stages (compression, transmission)
// receive. Individual file failures do not clear Success; only cancellation
// and precondition failures do.
type Outcome struct {
	Scanned             int
	Records             int
	SkippedMissingField int
	SkippedExisting     int
	Copied              int
	Failed              int
	Success             bool
}
