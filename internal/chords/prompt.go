package chords

import "fmt"

// promptTemplate spells out the output contract in prose; the schema is sent alongside it.
const promptTemplate = `Analyze the song %q and provide its guitar chords and original lyrics.

Follow these instructions precisely:
1. Identify the song title and original artist.
2. Break down the song into lines of lyrics.
3. For each line of lyrics, determine the correct guitar chords that should be played.
4. Place the chord names in a string directly above the lyric syllable where the chord change occurs.
5. Ensure the 'chords' and 'lyrics' strings are aligned for display in a monospaced font. Use spaces in the chord line to position chords over the lyrics.
6. If a line is instrumental (like an intro or solo), represent it in the lyrics field (e.g. "[Guitar Solo]") and still provide the chords above it.
7. If a line has no chords, the 'chords' field must be an empty string.
8. For each line, provide a 'timestamp' in seconds indicating when that line starts in the song. This drives autoscroll.
9. Output a single JSON object with the fields songTitle (string), artist (string) and lines (array of {chords: string, lyrics: string, timestamp: number}). Do not include any text or markdown before or after the JSON object.`

// BuildPrompt returns the generation instruction for a song name.
func BuildPrompt(songName string) string {
	return fmt.Sprintf(promptTemplate, songName)
}
