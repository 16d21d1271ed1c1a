package transcribe

import "context"

// Params is the fully-bound option set for one engine invocation. Every
// field has a concrete value before an engine sees it; defaulting happens
// during input validation, never here.
type Params struct {
	Model                          string
	Transcription                  string
	Translate                      bool
	Translation                    string
	Language                       *string
	Temperature                    float64
	BestOf                         int
	BeamSize                       int
	Patience                       float64
	LengthPenalty                  float64
	SuppressTokens                 string
	InitialPrompt                  *string
	ConditionOnPreviousText        bool
	TemperatureIncrementOnFallback float64
	CompressionRatioThreshold      float64
	LogprobThreshold               float64
	NoSpeechThreshold              float64
	EnableVAD                      bool
	WordTimestamps                 bool
	RepetitionPenalty              float64
	NoRepeatNgramSize              int
}

// Segment is one time-bounded unit of transcribed text.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability,omitempty"`
}

// Result is the raw engine output for one job, immutable once produced.
// TranslationSegments is populated only when translation was requested and
// the backend supports it.
type Result struct {
	Segments            []Segment
	TranslationSegments []Segment
	Language            string
	Device              string
	Model               string
}

// Engine is the opaque transcription collaborator. One call per job, no
// retries; calls for different jobs are independent.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, p Params) (*Result, error)
	Name() string
}
