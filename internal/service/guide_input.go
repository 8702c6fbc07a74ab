package service

import (
	"gopkg.in/yaml.v3"

	"github.com/workguide/guide-server/internal/domain"
)

// GuideInput is the full payload for creating or replacing a guide.
// List items are addressed by position; callers never see child row IDs.
type GuideInput struct {
	Title        string       `json:"title" yaml:"title" validate:"notblank,max=200"`
	Slug         string       `json:"slug" yaml:"slug" validate:"required,slug,max=200"`
	VideoURL     string       `json:"video_url,omitempty" yaml:"video_url,omitempty" validate:"omitempty,url"`
	WorkTypeTags []string     `json:"work_type_tags,omitempty" yaml:"work_type_tags,omitempty" validate:"dive,max=100"`
	ProductTags  []string     `json:"product_tags,omitempty" yaml:"product_tags,omitempty" validate:"dive,max=100"`
	Tools        []ItemInput  `json:"tools,omitempty" yaml:"tools,omitempty" validate:"dive"`
	Steps        []StepInput  `json:"steps,omitempty" yaml:"steps,omitempty" validate:"dive"`
	Warnings     []ItemInput  `json:"warnings,omitempty" yaml:"warnings,omitempty" validate:"dive"`
	Errors       []ItemInput  `json:"errors,omitempty" yaml:"errors,omitempty" validate:"dive"`
	Images       []ImageInput `json:"images,omitempty" yaml:"images,omitempty" validate:"dive"`

	// ReplaceAttachments drops every attachment filed under the guide ID when
	// an update replaces the guide. Create ignores it.
	ReplaceAttachments bool `json:"replace_attachments,omitempty" yaml:"-"`
}

// ItemInput is one tool, warning or common error.
type ItemInput struct {
	Text string `json:"text" yaml:"text" validate:"notblank,max=2000"`
}

// UnmarshalYAML accepts either a bare string or a mapping with a text key,
// so hand-written datasets can list tools as plain strings.
func (i *ItemInput) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		i.Text = node.Value
		return nil
	}
	type plain ItemInput
	return node.Decode((*plain)(i))
}

// StepInput is one numbered instruction.
type StepInput struct {
	Number int    `json:"number" yaml:"number" validate:"gte=1"`
	Text   string `json:"text" yaml:"text" validate:"notblank,max=5000"`
}

// ImageInput is one picture. StepNumber 0 files it under the whole guide.
type ImageInput struct {
	URL        string `json:"url" yaml:"url" validate:"required,max=2000"`
	StepNumber int    `json:"step_number,omitempty" yaml:"step_number,omitempty" validate:"gte=0"`
	Caption    string `json:"caption,omitempty" yaml:"caption,omitempty" validate:"max=500"`
}

// tagNames returns the tag list for category.
func (in *GuideInput) tagNames(category domain.LinkCategory) []string {
	if category == domain.LinkProduct {
		return in.ProductTags
	}
	return in.WorkTypeTags
}

// InputFromAggregate converts a stored guide back into the payload that
// would recreate it. Export and import round-trip through this.
func InputFromAggregate(a *domain.GuideAggregate) GuideInput {
	in := GuideInput{
		Title:        a.Title,
		Slug:         a.Slug,
		VideoURL:     a.VideoURL,
		WorkTypeTags: a.TagNames(domain.LinkWorkType),
		ProductTags:  a.TagNames(domain.LinkProduct),
		Tools:        itemInputs(a.Tools),
		Warnings:     itemInputs(a.Warnings),
		Errors:       itemInputs(a.Errors),
	}
	for _, st := range a.Steps {
		in.Steps = append(in.Steps, StepInput{Number: st.Number, Text: st.Text})
	}
	for _, img := range a.Images {
		in.Images = append(in.Images, ImageInput{URL: img.URL, StepNumber: img.StepNumber, Caption: img.Caption})
	}
	return in
}

func itemInputs(items []domain.ListItem) []ItemInput {
	if len(items) == 0 {
		return nil
	}
	out := make([]ItemInput, len(items))
	for i, it := range items {
		out[i] = ItemInput{Text: it.Text}
	}
	return out
}
