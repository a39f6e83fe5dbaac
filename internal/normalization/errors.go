package normalization

import "errors"

// ErrMalformedNative is returned when a native transfer cannot be coerced.
// Native data is consensus data; a malformed record fails the whole call.
var ErrMalformedNative = errors.New("malformed native transfer")
