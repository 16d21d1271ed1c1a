package audio

// Source is a tagged variant for a job's audio input: a remote URL or an
// inline base64 payload. Validation constructs it, so both-set and
// neither-set states never reach the pipeline.
type Source struct {
	url    string
	inline string
}

func URLSource(u string) Source {
	return Source{url: u}
}

func InlineSource(b64 string) Source {
	return Source{inline: b64}
}

func (s Source) IsURL() bool {
	return s.url != ""
}
