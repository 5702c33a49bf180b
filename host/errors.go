package host

import "errors"

var (
	// ErrNotFound tags a locator that resolves to no element. Capture paths
	// degrade to empty results instead of failing on it.
	ErrNotFound = errors.New("host: element not found")

	// ErrBadSelector tags a malformed or unsupported selector. The fallback
	// matcher skips the offending rule and continues.
	ErrBadSelector = errors.New("host: bad selector")

	// ErrSheetAccess tags a stylesheet that cannot be introspected. Carried
	// per sheet via Stylesheet.AccessErr, never fatal to a scan.
	ErrSheetAccess = errors.New("host: stylesheet not accessible")
)
