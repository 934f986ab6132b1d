package battle

// Outcome is the explicit result of handling one event. The transport layer
// maps it to a response; the core never touches a ResponseWriter.
type Outcome string

const (
	// OutcomeProcessed means state changed.
	OutcomeProcessed Outcome = "processed"
	// OutcomeDuplicate means the idempotency gate caught a re-delivery.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeSkipped means the event was valid but had no effect (zero
	// contribution, unknown order, already-refunded lines).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeIgnored means the topic is not one we process; acknowledged so
	// the sender stops retrying.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeRejected means the payload was malformed; the sender should not
	// expect a retry to succeed.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means a dependency broke; the sender should retry.
	OutcomeFailed Outcome = "failed"
)
