package video

import (
	"net/url"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/common/validation"
	"github.com/fmastery/admin-console/internal/core/datamodel"
)

// Form backs the add/edit dialog. A zero ID means a new video.
type Form struct {
	ID                   datamodel.ID `json:"id,omitempty"`
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	URL                  string       `json:"url"`
	PracticeType         string       `json:"practiceType"`
	Level                int          `json:"level"`
	EssentialCategory    string       `json:"essentialCategory"`
	EssentialSubCategory string       `json:"essentialSubCategory"`
	Tags                 string       `json:"tags"`
	VideoTime            int          `json:"videoTime"`
	XpToBeGained         int          `json:"xpToBeGained"`
	XpToBeGainedOnWatch  int          `json:"xpToBeGainedOnWatch"`
}

func NewForm() Form {
	return Form{PracticeType: PracticeDrill, Level: 1}
}

// EditForm copies v into a form, filling the same defaults as a new one.
func EditForm(v Video) Form {
	f := Form{
		ID:                   v.ID,
		Title:                v.Title,
		Description:          v.Description,
		URL:                  v.CloudFrontURL,
		PracticeType:         v.PracticeType,
		Level:                v.Level,
		EssentialCategory:    v.EssentialCategory,
		EssentialSubCategory: v.EssentialSubcategory,
		Tags:                 v.Tags,
		VideoTime:            v.VideoTime,
		XpToBeGained:         v.XpToBeGained,
		XpToBeGainedOnWatch:  v.XpToBeGainedOnWatch,
	}
	if f.PracticeType == "" {
		f.PracticeType = PracticeDrill
	}
	if f.Level == 0 {
		f.Level = 1
	}
	return f
}

func (f Form) IsEdit() bool { return !f.ID.IsZero() }

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("title", f.Title).Named("Title").Required().MaxLength(200)
	v.Field("url", f.URL).Named("Video URL").Required().Custom(httpURL)
	v.Field("practiceType", f.PracticeType).Named("Practice type").Required().OneOf(PracticeTypes...)
	v.Field("level", f.Level).Named("Level").MinInt(1)
	if f.PracticeType == PracticeEssential {
		v.Field("essentialCategory", f.EssentialCategory).Named("Essential category").Required()
		v.Field("essentialSubCategory", f.EssentialSubCategory).Named("Essential subcategory").Required()
	}
	v.Field("tags", f.Tags).Named("Tags").Required()
	v.Field("videoTime", f.VideoTime).Named("Video time").MinInt(1)
	v.Field("xpToBeGained", f.XpToBeGained).Named("XP to be gained").MinInt(0)
	v.Field("xpToBeGainedOnWatch", f.XpToBeGainedOnWatch).Named("XP on watch").MinInt(0)
	return v.Err()
}

func httpURL(value interface{}) *internal.AppError {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return internal.NewValidationFieldError("url", "Please enter a valid URL", internal.ErrCodeValidationFailed)
	}
	return nil
}

// payload is the wire body. Category fields are null unless the video is an Essential.
type payload struct {
	ID                   datamodel.ID `json:"id,omitempty"`
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	URL                  string       `json:"url"`
	PracticeType         string       `json:"practiceType"`
	Level                int          `json:"level"`
	EssentialCategory    *string      `json:"essentialCategory"`
	EssentialSubCategory *string      `json:"essentialSubCategory"`
	Tags                 string       `json:"tags"`
	VideoTime            int          `json:"videoTime"`
	XpToBeGained         int          `json:"xpToBeGained"`
	XpToBeGainedOnWatch  int          `json:"xpToBeGainedOnWatch"`
}

func (f Form) payload() payload {
	p := payload{
		ID:                  f.ID,
		Title:               f.Title,
		Description:         f.Description,
		URL:                 f.URL,
		PracticeType:        f.PracticeType,
		Level:               f.Level,
		Tags:                f.Tags,
		VideoTime:           f.VideoTime,
		XpToBeGained:        f.XpToBeGained,
		XpToBeGainedOnWatch: f.XpToBeGainedOnWatch,
	}
	if f.PracticeType == PracticeEssential {
		category, sub := f.EssentialCategory, f.EssentialSubCategory
		p.EssentialCategory = &category
		p.EssentialSubCategory = &sub
	}
	return p
}
