package model

import (
	"fmt"
	"image"

	"github.com/hupe1980/medmesh/internal/imageutil"
)

// ChatTemplate formats a raw prompt plus images into a Request. Apply is pure:
// the same prompt and images always produce the same Request.
type ChatTemplate struct {
	// Instructions is sent as the system prompt.
	Instructions string
	// NumImages is the number of image slots the model expects per prompt.
	// Zero disables the check.
	NumImages int
}

// Apply builds a single user content holding the images followed by the prompt text.
func (t ChatTemplate) Apply(prompt string, images ...image.Image) (Request, error) {
	if t.NumImages > 0 && len(images) != t.NumImages {
		return Request{}, fmt.Errorf("chat template expects %d image(s), got %d", t.NumImages, len(images))
	}

	parts := make([]Part, 0, len(images)+1)
	for i, img := range images {
		if img == nil {
			return Request{}, fmt.Errorf("image %d is nil", i)
		}
		data, err := imageutil.EncodePNG(img)
		if err != nil {
			return Request{}, err
		}
		parts = append(parts, ImagePart{Data: data, MIMEType: "image/png"})
	}
	parts = append(parts, TextPart{Text: prompt})

	return Request{
		Instructions: t.Instructions,
		Contents:     []Content{{Role: RoleUser, Parts: parts}},
	}, nil
}
