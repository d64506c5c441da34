package report

import (
	"bufio"
	"fmt"
	"io"
)

// EventLog writes the per-policy event log: one line per event of the
// shape "time <t>: job <id> <EVENT> <kv pairs>" (spec.md §6), buffered and
// flushed on Close.
type EventLog struct {
	w *bufio.Writer
}

// NewEventLog wraps w in a buffered writer.
func NewEventLog(w io.Writer) *EventLog {
	return &EventLog{w: bufio.NewWriter(w)}
}

// Close flushes any buffered output.
func (l *EventLog) Close() error {
	return l.w.Flush()
}

func (l *EventLog) line(tick int, format string, args ...any) {
	fmt.Fprintf(l.w, "time %d: %s\n", tick, fmt.Sprintf(format, args...))
}

// Phase writes a phase-boundary banner line.
func (l *EventLog) Phase(tick int, label string) {
	fmt.Fprintf(l.w, "time %d: %s\n", tick, label)
}

// Arrive logs a successful arrival.
func (l *EventLog) Arrive(tick, jobID int, jobType string, codeLoc, stackLoc int) {
	l.line(tick, "job %d ARRIVE type=%s code_loc=%d stack_loc=%d", jobID, jobType, codeLoc, stackLoc)
}

// Rejected logs a failed arrival (code+stack allocation could not both
// succeed).
func (l *EventLog) Rejected(tick, jobID int) {
	l.line(tick, "job %d REJECTED (not enough memory)", jobID)
}

// HeapAlloc logs a successful heap allocation.
func (l *EventLog) HeapAlloc(tick, jobID, loc, unitCount int) {
	l.line(tick, "job %d HEAP_ALLOC loc=%d units=%d", jobID, loc, unitCount)
}

// HeapFree logs a heap block release, whether from lifetime expiry or job
// completion.
func (l *EventLog) HeapFree(tick, jobID, loc, unitCount int) {
	l.line(tick, "job %d HEAP_FREE loc=%d units=%d", jobID, loc, unitCount)
}

// IORequest logs a job diverting to the I/O queue.
func (l *EventLog) IORequest(tick, jobID int) {
	l.line(tick, "job %d IO_REQUEST", jobID)
}

// IOStart logs the I/O device picking up a queued job.
func (l *EventLog) IOStart(tick, jobID int) {
	l.line(tick, "job %d IO_START", jobID)
}

// IODone logs I/O completion, returning the job to the ready queue.
func (l *EventLog) IODone(tick, jobID int) {
	l.line(tick, "job %d IO_DONE", jobID)
}

// Dispatch logs the CPU picking up a ready job.
func (l *EventLog) Dispatch(tick, jobID int) {
	l.line(tick, "job %d DISPATCH", jobID)
}

// Finish logs job completion.
func (l *EventLog) Finish(tick, jobID int) {
	l.line(tick, "job %d FINISH", jobID)
}

// Complete writes the trailing "simulation complete" marker the original
// tool appends before closing its log file.
func (l *EventLog) Complete() {
	fmt.Fprintln(l.w, "simulation complete")
}
