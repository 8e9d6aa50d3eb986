package job

// Types mirroring the workflow engine's job-result payloads. Field names match
// the engine's JSON exactly; the relay passes these through without reshaping.

// ResultEnvelope wraps every result fetch from the workflow engine.
type ResultEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    *Response `json:"data,omitempty"`
}

// Response carries the extracted transcript and video metadata for one job.
type Response struct {
	VideoID       string               `json:"videoId"`
	VideoInfo     VideoInfo            `json:"videoInfo"`
	LanguageCodes []LanguageCode       `json:"language_code"`
	Transcripts   map[string]Languages `json:"transcripts"`
}

// LanguageCode names one available transcript language.
type LanguageCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages groups the segment variants the engine produces per language.
type Languages struct {
	Custom  []Segment `json:"custom"`
	Default []Segment `json:"default"`
	Auto    []Segment `json:"auto"`
}

// Segment is one timed piece of transcript text. Timestamps arrive as strings
// from the engine and are kept that way.
type Segment struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// VideoInfo is the engine's video metadata block.
type VideoInfo struct {
	Name         string       `json:"name"`
	ThumbnailURL ThumbnailURL `json:"thumbnailUrl"`
	EmbedURL     string       `json:"embedUrl"`
	Duration     string       `json:"duration"`
	Description  string       `json:"description"`
	UploadDate   string       `json:"upload_date"`
	Genre        string       `json:"genre"`
	Author       string       `json:"author"`
	ChannelID    string       `json:"channel_id"`
}

// ThumbnailURL holds the thumbnail variants the engine reports.
type ThumbnailURL struct {
	HQDefault     string `json:"hqdefault"`
	MaxResDefault string `json:"maxresdefault"`
}
