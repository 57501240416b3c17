package index

import "errors"

// ErrCorrupt indicates the sidecar and vector buffer disagree. Loss of
// alignment is corruption, not a soft error: a process observing it must
// not serve.
var ErrCorrupt = errors.New("index corrupt")

// ErrVectorLengthMismatch indicates two vectors have different dimensions.
var ErrVectorLengthMismatch = errors.New("vector length mismatch")
