package display

import (
	"bufio"
	"fmt"
	"io"

	"github.com/satindergrewal/chordsync/internal/song"
)

const (
	activeGutter = "> "
	idleGutter   = "  "
)

// Render writes the sheet as monospaced text: chords above lyrics, a blank line
// between units. The active line gets a marker in the gutter of both rows so
// chord columns stay aligned with the syllables beneath them.
func Render(w io.Writer, data song.SongData, active int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n%s\n\n", data.SongTitle, data.Artist)
	for i, l := range data.Lines {
		gutter := idleGutter
		if i == active {
			gutter = activeGutter
		}
		chords := l.Chords
		if chords == "" {
			chords = " "
		}
		fmt.Fprintf(bw, "%s%s\n%s%s\n\n", gutter, chords, gutter, l.Lyrics)
	}

	return bw.Flush()
}
