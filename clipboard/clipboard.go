// Package clipboard reads the system clipboard.
package clipboard

import cb "github.com/atotto/clipboard"

// Unsupported is true when no clipboard utility (pbpaste, xclip, xsel,
// wl-paste) could be found.
var Unsupported = cb.Unsupported

func Read() (string, error) {
	return cb.ReadAll()
}
