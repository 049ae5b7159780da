package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusSuccess ItemStatus = "success"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of ingesting one record of a batch.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewSuccess creates a successful batch result.
func NewSuccess(id string) Result { return Result{id: id, status: StatusSuccess} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the record identifier as supplied by the caller, possibly empty.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the record was stored.
func (r Result) OK() bool { return r.status == StatusSuccess }

// Summarize counts successes and failures.
func Summarize(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
