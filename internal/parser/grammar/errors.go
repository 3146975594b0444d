package grammar

import "fmt"

// ParseError reports entry text that violates the field-count or
// token-position assumptions of its declared transaction type. It carries
// the offending fragment so a transcriber can find the bad cell.
type ParseError struct {
	Fragment string
	Reason   string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cannot parse entry fragment %q: %s", e.Fragment, e.Reason)
}

// Is implements the errors.Is interface for ParseError. An empty target
// matches any ParseError.
func (e ParseError) Is(target error) bool {
	t, ok := target.(ParseError)
	if !ok {
		return false
	}
	if t.Fragment == "" && t.Reason == "" {
		return true
	}
	return e.Fragment == t.Fragment && e.Reason == t.Reason
}
