package model

// PayloadKind identifies which content variant a payload carries.
type PayloadKind string

const (
	KindText      PayloadKind = "text"
	KindPhoto     PayloadKind = "photo"
	KindVideo     PayloadKind = "video"
	KindAnimation PayloadKind = "animation"
	KindVoice     PayloadKind = "voice"
	KindVideoNote PayloadKind = "video_note"
)

// Payload is the content of a submission. Exactly one kind is set per
// payload: Text is used only for KindText, FileURL only for media kinds.
// Caption is the user-supplied text attached to a media payload.
type Payload struct {
	Kind    PayloadKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	FileURL string      `json:"file_url,omitempty"`
	Caption string      `json:"caption,omitempty"`
}

// DisplayText extracts the user-visible text of a payload: the text itself
// for text payloads, the caption for everything else.
func (p Payload) DisplayText() string {
	if p.Kind == KindText {
		return p.Text
	}
	return p.Caption
}

// IsMedia reports whether the payload carries a file reference.
func (p Payload) IsMedia() bool {
	return p.Kind != KindText
}
