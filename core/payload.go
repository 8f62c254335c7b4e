package core

import "image"

// Payload conventional key names, kept for audit logging and tests.
const (
	KeyNote         = "note"
	KeyImage        = "image"
	KeyClinicalNote = "clinical_note"
	KeyTranscript   = "transcript"
)

// Payload is a closed set of request payload variants. Every variant embeds the
// InputPayload received from the boundary, so converting between them only
// ever adds keys.
type Payload interface {
	// Input returns the original note/image received from the boundary.
	Input() InputPayload
	// Keys lists the conventional key names present in this payload.
	Keys() []string
	isPayload()
}

// InputPayload is the unshaped payload created for every inbound request.
type InputPayload struct {
	Note  *string     // Optional free text (nil when absent)
	Image image.Image // Optional decoded RGB image (nil when absent)
}

// Input implements Payload.
func (p InputPayload) Input() InputPayload { return p }

// Keys implements Payload.
func (p InputPayload) Keys() []string {
	keys := make([]string, 0, 2)
	if p.Note != nil {
		keys = append(keys, KeyNote)
	}
	if p.Image != nil {
		keys = append(keys, KeyImage)
	}
	return keys
}

// NoteText returns the note or "" when absent.
func (p InputPayload) NoteText() string {
	if p.Note == nil {
		return ""
	}
	return *p.Note
}

// HasImage reports whether a real image was supplied.
func (p InputPayload) HasImage() bool { return p.Image != nil }

func (InputPayload) isPayload() {}

// ICD10Payload is the payload shape consumed by the ICD-10 coder.
type ICD10Payload struct {
	InputPayload
	ClinicalNote string
}

// Keys implements Payload.
func (p ICD10Payload) Keys() []string {
	return append(p.InputPayload.Keys(), KeyClinicalNote)
}

// SOAPPayload is the payload shape consumed by the SOAP note generator.
type SOAPPayload struct {
	InputPayload
	Transcript string
}

// Keys implements Payload.
func (p SOAPPayload) Keys() []string {
	return append(p.InputPayload.Keys(), KeyTranscript)
}

// ImageAnalysisPayload is the payload shape consumed by the image analyzer.
// ClinicalNote doubles as the optional question about the image.
type ImageAnalysisPayload struct {
	InputPayload
	ClinicalNote string
}

// Keys implements Payload.
func (p ImageAnalysisPayload) Keys() []string {
	keys := p.InputPayload.Keys()
	if p.Image == nil {
		// image_analysis always carries the image slot, even when it is empty.
		keys = append(keys, KeyImage)
	}
	return append(keys, KeyClinicalNote)
}

// ShapePayload converts p into the variant consumed by task t. Unknown tasks
// return p unchanged.
func ShapePayload(t Task, p Payload) Payload {
	in := InputPayload{}
	if p != nil {
		in = p.Input()
	}
	switch t {
	case TaskICD10:
		return ICD10Payload{InputPayload: in, ClinicalNote: in.NoteText()}
	case TaskSOAP:
		return SOAPPayload{InputPayload: in, Transcript: in.NoteText()}
	case TaskImageAnalysis:
		return ImageAnalysisPayload{InputPayload: in, ClinicalNote: in.NoteText()}
	default:
		return p
	}
}
