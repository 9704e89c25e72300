package qa

import "errors"

// ErrEmptyQuestion is returned when the caller submits an empty or missing
// question. It is surfaced before any retrieval or completion work happens.
var ErrEmptyQuestion = errors.New("question must not be empty")
