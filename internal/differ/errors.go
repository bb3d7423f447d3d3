package differ

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedChangeError reports a transition that cannot be expressed as any
// ordered sequence of steps on the target dialect. The rest of the plan is
// still computed.
type UnsupportedChangeError struct {
	Namespace string
	Table     string
	Name      string
	Reason    string
}

func (e *UnsupportedChangeError) Error() string {
	var target []string
	for _, p := range []string{e.Namespace, e.Table, e.Name} {
		if p != "" {
			target = append(target, "`"+p+"`")
		}
	}
	if len(target) == 0 {
		return "unsupported change: " + e.Reason
	}
	return fmt.Sprintf("unsupported change on %s: %s", strings.Join(target, "."), e.Reason)
}

// Unsupported extracts every UnsupportedChangeError from an error returned by Diff.
func Unsupported(err error) []*UnsupportedChangeError {
	if err == nil {
		return nil
	}
	var out []*UnsupportedChangeError
	var u *UnsupportedChangeError
	if errors.As(err, &u) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				out = append(out, Unsupported(e)...)
			}
			return out
		}
		return []*UnsupportedChangeError{u}
	}
	return nil
}
