package rail

import "errors"

// ErrUnavailable is the uniform outcome for every rail failure, whether the
// call itself failed or the circuit short-circuited it. Raw rail errors never
// cross this boundary.
var ErrUnavailable = errors.New("payment rail unavailable")
