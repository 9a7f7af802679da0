package models

// Submission is one trigger of the Review Code control
type Submission struct {
	Seq  uint64
	Code string
}

// Settlement is the outcome of one submission
type Settlement struct {
	Seq      uint64
	Feedback string // Extracted feedback, or the fixed error text on failure
	Err      error  // Cause of a failed exchange, for logging only
}

// Failed reports whether the exchange behind the settlement failed.
func (s Settlement) Failed() bool {
	return s.Err != nil
}
