package entity

// TransactionEvent announces a committed transaction to downstream sinks.
type TransactionEvent struct {
	EventID string
	// CorrelationID is the id of the request that created the transaction.
	CorrelationID string
	Transaction   Transaction
}
