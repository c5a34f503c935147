package runner

import (
	"fmt"
	"strings"
)

// ShowFolderName builds the library root folder for a show, tagged with the
// catalog id so media servers can match it without guessing.
func ShowFolderName(name, imdbID string) string {
	return fmt.Sprintf("%s [imdbid-%s]", strings.TrimSpace(name), imdbID)
}

// SeasonFolderName builds the season subfolder, zero-padded to two digits.
func SeasonFolderName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// OutputTemplate builds the yt-dlp output filename template for a season.
// The autonumber placeholder numbers episodes 01, 02, ... in download order.
func OutputTemplate(name string, season int) string {
	return fmt.Sprintf("%s S%02dE%%(autonumber)02d.%%(ext)s", strings.TrimSpace(name), season)
}
