// Package video manages the training video catalog.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
)

const ResourceName = "videos"

const (
	PracticeDrill     = "Drill"
	PracticeEssential = "Essential"
)

var PracticeTypes = []string{PracticeDrill, PracticeEssential}

// Video is a catalog entry as the backend spells it.
type Video struct {
	ID                   datamodel.ID   `json:"id"`
	Title                string         `json:"Title"`
	Description          string         `json:"Description"`
	CloudFrontURL        string         `json:"CloudFront_URL"`
	PracticeType         string         `json:"PracticeType"`
	Level                int            `json:"Level"`
	EssentialCategory    string         `json:"EssentialCategory,omitempty"`
	EssentialSubcategory string         `json:"EssentialSubcategory,omitempty"`
	Tags                 string         `json:"Tags"`
	VideoTime            int            `json:"VideoTime"`
	XpToBeGained         int            `json:"XpToBeGained"`
	XpToBeGainedOnWatch  int            `json:"XpToBeGainedOnWatch"`
	UploadedAt           datamodel.Time `json:"UploadedAt"`
}

// TagList splits the comma separated tags.
func (v Video) TagList() []string {
	var out []string
	for _, t := range strings.Split(v.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// catalog decodes the list payload, which is either the array itself or {"videos": [...]}.
// Anything else is an empty catalog.
type catalog []Video

func (c *catalog) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = catalog{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var list []Video
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
	case '{':
		var wrapped struct {
			Videos json.RawMessage `json:"videos"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if v := bytes.TrimSpace(wrapped.Videos); len(v) > 0 && v[0] == '[' {
			var list []Video
			if err := json.Unmarshal(v, &list); err != nil {
				return err
			}
			*c = list
		}
	}
	return nil
}

func NewResource(fetch func(ctx context.Context) ([]Video, error)) listing.Resource[Video] {
	return listing.Resource[Video]{
		Name:           ResourceName,
		Fetch:          fetch,
		FailureMessage: "Failed to load videos",
		Search: func(v Video) []string {
			return []string{v.Title, v.Description, v.PracticeType, v.EssentialCategory, v.Tags}
		},
		SortFields: map[string]func(Video) interface{}{
			"Title":                func(v Video) interface{} { return v.Title },
			"Description":          func(v Video) interface{} { return v.Description },
			"PracticeType":         func(v Video) interface{} { return v.PracticeType },
			"Level":                func(v Video) interface{} { return v.Level },
			"EssentialCategory":    func(v Video) interface{} { return v.EssentialCategory },
			"EssentialSubcategory": func(v Video) interface{} { return v.EssentialSubcategory },
			"Tags":                 func(v Video) interface{} { return v.Tags },
			"VideoTime":            func(v Video) interface{} { return v.VideoTime },
			"XpToBeGained":         func(v Video) interface{} { return v.XpToBeGained },
			"UploadedAt":           func(v Video) interface{} { return v.UploadedAt.SortValue() },
		},
		Keys: []func(Video) datamodel.ID{
			func(v Video) datamodel.ID { return v.ID },
		},
	}
}
