package debug

import (
	"fmt"
	"os"
)

// Logf writes a debug line to stderr. Arguments implementing
// fmt.Stringer (paths, values, schemas) render via String.
func Logf(msg string, args ...any) {
	for i := range args {
		if s, ok := args[i].(fmt.Stringer); ok {
			args[i] = s.String()
		}
	}
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}
