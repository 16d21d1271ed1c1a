package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/voxhub/whisperd/internal/audio"
	"github.com/voxhub/whisperd/internal/transcribe"
)

// Input is the validated, fully-defaulted job input. Every option carries a
// concrete value after ParseInput so no defaulting happens further down the
// pipeline.
type Input struct {
	Audio                          string  `json:"audio" validate:"omitempty,url"`
	AudioBase64                    string  `json:"audio_base64"`
	Model                          string  `json:"model" validate:"oneof=tiny tiny.en base base.en small small.en medium medium.en large-v1 large-v2 large-v3"`
	Transcription                  string  `json:"transcription" validate:"oneof=plain_text formatted_text srt vtt"`
	Translate                      bool    `json:"translate"`
	Translation                    string  `json:"translation" validate:"oneof=plain_text formatted_text srt vtt"`
	Language                       *string `json:"language"`
	Temperature                    float64 `json:"temperature" validate:"gte=0"`
	BestOf                         int     `json:"best_of" validate:"min=1"`
	BeamSize                       int     `json:"beam_size" validate:"min=1"`
	Patience                       float64 `json:"patience" validate:"gt=0"`
	LengthPenalty                  float64 `json:"length_penalty" validate:"gt=0"`
	SuppressTokens                 string  `json:"suppress_tokens"`
	InitialPrompt                  *string `json:"initial_prompt"`
	ConditionOnPreviousText        bool    `json:"condition_on_previous_text"`
	TemperatureIncrementOnFallback float64 `json:"temperature_increment_on_fallback" validate:"gte=0"`
	CompressionRatioThreshold      float64 `json:"compression_ratio_threshold"`
	LogprobThreshold               float64 `json:"logprob_threshold"`
	NoSpeechThreshold              float64 `json:"no_speech_threshold" validate:"gte=0,lte=1"`
	EnableVAD                      bool    `json:"enable_vad"`
	WordTimestamps                 bool    `json:"word_timestamps"`
	RepetitionPenalty              float64 `json:"repetition_penalty" validate:"gt=0"`
	NoRepeatNgramSize              int     `json:"no_repeat_ngram_size" validate:"min=0"`
	Diarize                        bool    `json:"diarize"`
}

func defaultInput() *Input {
	return &Input{
		Model:                          "base",
		Transcription:                  transcribe.FormatPlainText,
		Translation:                    transcribe.FormatPlainText,
		Temperature:                    0,
		BestOf:                         5,
		BeamSize:                       5,
		Patience:                       1,
		LengthPenalty:                  1,
		SuppressTokens:                 "-1",
		TemperatureIncrementOnFallback: 0.2,
		CompressionRatioThreshold:      2.4,
		LogprobThreshold:               -1,
		NoSpeechThreshold:              0.6,
		RepetitionPenalty:              1,
		NoRepeatNgramSize:              0,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names the way callers spell them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// inputKeys is the set of recognized option names; anything else in the
// payload is rejected.
var inputKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Input{})
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		keys[name] = true
	}
	return keys
}()

// ParseInput decodes and validates a raw job payload, substituting the
// documented default for every absent option. It reports all violations at
// once rather than stopping at the first.
func ParseInput(raw json.RawMessage) (*Input, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Errors: []string{"input must be a JSON object"}}
	}

	var errs []string
	for key := range fields {
		if !inputKeys[key] {
			errs = append(errs, fmt.Sprintf("Unexpected input. %s is not a valid input option", key))
		}
	}

	in := defaultInput()
	if err := json.Unmarshal(raw, in); err != nil {
		errs = append(errs, typeErrorMessage(err))
		return nil, &ValidationError{Errors: errs}
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fieldErrorMessage(fe))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return in, nil
}

// Source builds the audio source variant. Callers must have applied the
// exactly-one-of check first.
func (in *Input) Source() audio.Source {
	if in.Audio != "" {
		return audio.URLSource(in.Audio)
	}
	return audio.InlineSource(in.AudioBase64)
}

// Params binds the full engine parameter set from the validated input.
func (in *Input) Params() transcribe.Params {
	return transcribe.Params{
		Model:                          in.Model,
		Transcription:                  in.Transcription,
		Translate:                      in.Translate,
		Translation:                    in.Translation,
		Language:                       in.Language,
		Temperature:                    in.Temperature,
		BestOf:                         in.BestOf,
		BeamSize:                       in.BeamSize,
		Patience:                       in.Patience,
		LengthPenalty:                  in.LengthPenalty,
		SuppressTokens:                 in.SuppressTokens,
		InitialPrompt:                  in.InitialPrompt,
		ConditionOnPreviousText:        in.ConditionOnPreviousText,
		TemperatureIncrementOnFallback: in.TemperatureIncrementOnFallback,
		CompressionRatioThreshold:      in.CompressionRatioThreshold,
		LogprobThreshold:               in.LogprobThreshold,
		NoSpeechThreshold:              in.NoSpeechThreshold,
		EnableVAD:                      in.EnableVAD,
		WordTimestamps:                 in.WordTimestamps,
		RepetitionPenalty:              in.RepetitionPenalty,
		NoRepeatNgramSize:              in.NoRepeatNgramSize,
	}
}

func typeErrorMessage(err error) string {
	if ute, ok := err.(*json.UnmarshalTypeError); ok && ute.Field != "" {
		return fmt.Sprintf("invalid type for %s", ute.Field)
	}
	return "malformed input payload"
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
