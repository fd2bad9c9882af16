package song

// Schema is a minimal JSON-schema tree shared by the generator backends.
// It marshals to the subset of JSON Schema that Ollama's `format` field accepts.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Schema type names.
const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
	TypeNumber = "number"
)

// ResponseSchema describes the JSON object a generator must return for a song.
func ResponseSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"songTitle": {
				Type:        TypeString,
				Description: "The title of the song.",
			},
			"artist": {
				Type:        TypeString,
				Description: "The artist or band who performs the song.",
			},
			"lines": {
				Type:        TypeArray,
				Description: "An array of objects, each representing a line of the song with its chords and lyrics.",
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"chords": {
							Type:        TypeString,
							Description: "A string of chords aligned above the lyrics. Can be empty if there are no chords for this line.",
						},
						"lyrics": {
							Type:        TypeString,
							Description: "The corresponding line of lyrics.",
						},
						"timestamp": {
							Type:        TypeNumber,
							Description: "The starting time of this lyric line in seconds from the beginning of the song. Required for autoscroll.",
						},
					},
					Required: []string{"chords", "lyrics", "timestamp"},
				},
			},
		},
		Required: []string{"songTitle", "artist", "lines"},
	}
}
