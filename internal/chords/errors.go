package chords

import "errors"

// Kind classifies why a fetch failed so callers can choose a message per cause.
type Kind int

const (
	UpstreamUnavailable Kind = iota + 1
	MalformedResponse
	IncompleteResult
)

func (k Kind) String() string {
	switch k {
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case MalformedResponse:
		return "malformed_response"
	case IncompleteResult:
		return "incomplete_result"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *GenerationError.
var (
	ErrUpstreamUnavailable = errors.New("could not retrieve chord data: the API might be unavailable or the request failed")
	ErrMalformedResponse   = errors.New("failed to parse the response from the AI: the data format was invalid")
	ErrIncompleteResult    = errors.New("the returned data is incomplete: the song might be obscure or the analysis failed")
)

// GenerationError is returned by Fetch for every failure.
type GenerationError struct {
	Kind Kind
	Err  error // underlying cause, may be nil
}

func (e *GenerationError) sentinel() error {
	switch e.Kind {
	case UpstreamUnavailable:
		return ErrUpstreamUnavailable
	case MalformedResponse:
		return ErrMalformedResponse
	case IncompleteResult:
		return ErrIncompleteResult
	}
	return nil
}

func (e *GenerationError) Error() string {
	msg := "chord generation failed"
	if s := e.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMalformedResponse) and friends match by kind.
func (e *GenerationError) Is(target error) bool {
	s := e.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of a fetch error, or 0 when err is not a GenerationError.
func KindOf(err error) Kind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}
