package model

import "strings"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ImagePart is an encoded image segment.
type ImagePart struct {
	Data     []byte // Encoded image bytes
	MIMEType string // e.g. "image/png"
}

// isPart implements the Part interface for ImagePart.
func (ImagePart) isPart() {}

// Content holds role + ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Text concatenates all text parts.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// Images returns all image parts in order.
func (c Content) Images() []ImagePart {
	var images []ImagePart
	for _, p := range c.Parts {
		if ip, ok := p.(ImagePart); ok {
			images = append(images, ip)
		}
	}
	return images
}
