package types

// QueueEventType defines the type of event emitted by the queue session.
type QueueEventType string

const (
	EventQueueStarted    QueueEventType = "queue_started"    // EventQueueStarted indicates a new command batch began processing.
	EventCommandStarted  QueueEventType = "command_started"  // EventCommandStarted indicates an attempt began for the command at Index.
	EventRecordUpdated   QueueEventType = "record_updated"   // EventRecordUpdated carries a snapshot of the in-flight execution ledger.
	EventCommandFinished QueueEventType = "command_finished" // EventCommandFinished carries the terminal result for the command at Index.
	EventRetryStarted    QueueEventType = "retry_started"    // EventRetryStarted indicates a failed/stopped result is being re-attempted.
	EventRetryFinished   QueueEventType = "retry_finished"   // EventRetryFinished carries the merged result after a retry.
	EventQueuePaused     QueueEventType = "queue_paused"     // EventQueuePaused indicates scheduling of the next command is suspended.
	EventQueueResumed    QueueEventType = "queue_resumed"    // EventQueueResumed indicates scheduling resumed.
	EventStopRequested   QueueEventType = "stop_requested"   // EventStopRequested indicates the operator asked the current attempt to stop.
	EventQueueFinished   QueueEventType = "queue_finished"   // EventQueueFinished indicates the batch ran to exhaustion.
	EventQueueCleared    QueueEventType = "queue_cleared"    // EventQueueCleared indicates all session state was reset.
	EventQueueError      QueueEventType = "queue_error"      // EventQueueError carries a coordinator-level error.
)

// QueueEvent is one observable state change published by the queue session.
// The UI collaborator consumes these; the core never blocks on a slow
// consumer (events are dropped when the buffer is full).
type QueueEvent struct {
	// Type indicates the kind of event.
	Type QueueEventType

	// Index is the queue position of the command this event concerns.
	Index int

	// Command is the command text, when relevant.
	Command string

	// Record is a snapshot of the live execution ledger for record updates.
	Record *CommandRecord

	// Result is the terminal (possibly merged) result for finish events.
	Result *CommandResult

	// SessionUsage is the cross-command token accumulator at emission time.
	SessionUsage TokenUsage

	// Err carries coordinator-level errors.
	Err error
}
