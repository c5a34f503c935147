package version

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version holds the current build version. Override with
// -ldflags "-X github.com/Joyersch/jellydump/internal/version.Version=v1.2.3".
var Version = "dev"

const (
	separator = "────────────────────────────────────────────────────────────"
	banner    = `
     _      _ _           _
    (_) ___| | |_   _  __| |_   _ _ __ ___  _ __
    | |/ _ \ | | | | |/ _' | | | | '_ ' _ \| '_ \
    | |  __/ | | |_| | (_| | |_| | | | | | | |_) |
   _/ |\___|_|_|\__, |\__,_|\__,_|_| |_| |_| .__/
  |__/          |___/                      |_|
`
)

// Banner returns the ASCII-art project banner.
func Banner() string {
	return strings.Trim(banner, "\n")
}

// PrintBanner writes the decorated banner and version info to w (stdout if nil).
func PrintBanner(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, Banner())
	fmt.Fprintf(w, "\n  jellydump %s\n", Version)
	fmt.Fprintf(w, "  Season Download Service\n")
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w)
}
