package cli

import (
	"AI-Content-Creator-Backend/internal/form"
	"AI-Content-Creator-Backend/internal/model"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

const (
	ActionAdd    = "إضافة حقل مخصص"
	ActionRemove = "حذف حقل مخصص"
	ActionSubmit = "إرسال الطلب"
)

var styleLabels = []string{
	"استخدام الرموز التعبيرية",
	"لغة بسيطة",
	"لغة أكاديمية",
	"نقاط رئيسية",
	"أسئلة للمناقشة",
}

func stylesFrom(selected []string) model.StyleOptions {
	has := func(i int) bool { return slices.Contains(selected, styleLabels[i]) }
	return model.StyleOptions{
		UseEmoji:            has(0),
		SimpleLanguage:      has(1),
		AcademicLanguage:    has(2),
		BulletPoints:        has(3),
		DiscussionQuestions: has(4),
	}
}

func validateTopic(s string) error {
	if !model.IsValidTopic(s) {
		return fmt.Errorf("يجب أن يكون الموضوع بين %d و %d حرفاً", model.MinTopicLength, model.MaxTopicLength)
	}
	return nil
}

// Run walks the user through the form and submits it once. A form without
// usable Telegram identifiers is rejected before the first prompt.
func Run(ctx context.Context, c *form.Controller, p Prompter, options model.OptionsResponse, out io.Writer) (form.Result, error) {
	if _, err := c.BuildRequest(); errors.Is(err, form.ErrInvalidIdentifier) {
		fmt.Fprintln(out, form.MsgInvalidIdentifier)
		return form.Result{}, err
	}

	topic, err := p.Input("الموضوع الرئيسي", "", validateTopic)
	if err != nil {
		return form.Result{}, err
	}
	c.SetMainTopic(topic)

	contentType, err := p.Select("نوع المحتوى", options.ContentTypes, "")
	if err != nil {
		return form.Result{}, err
	}
	c.SetContentType(contentType)

	length, err := p.Select("طول المحتوى", options.ContentLengths, model.BriefLength)
	if err != nil {
		return form.Result{}, err
	}
	c.SetContentLength(length)

	styles, err := p.MultiSelect("خيارات الأسلوب", styleLabels)
	if err != nil {
		return form.Result{}, err
	}
	c.SetStyleOptions(stylesFrom(styles))

	if err := editFields(c, p, out); err != nil {
		return form.Result{}, err
	}

	res := c.Submit(ctx)
	fmt.Fprintln(out, c.Status().Text)
	return res, nil
}

func editFields(c *form.Controller, p Prompter, out io.Writer) error {
	for {
		fields := c.Fields()
		actions := []string{ActionAdd, ActionSubmit}
		if len(fields) > 0 {
			actions = []string{ActionAdd, ActionRemove, ActionSubmit}
		}
		action, err := p.Select("الحقول المخصصة", actions, ActionSubmit)
		if err != nil {
			return err
		}

		switch action {
		case ActionAdd:
			label, err := p.Input("اسم الحقل", "", nil)
			if err != nil {
				return err
			}
			value, err := p.Input("قيمة الحقل", "", nil)
			if err != nil {
				return err
			}
			c.SetDraft(label, value)
			if err := c.AddDraftField(); err != nil {
				fmt.Fprintln(out, c.Status().Text)
			}
		case ActionRemove:
			labels := make([]string, len(fields))
			for i, f := range fields {
				labels[i] = fmt.Sprintf("%d. %s: %s", i+1, f.Label, f.Value)
			}
			choice, err := p.Select("اختر الحقل المراد حذفه", labels, "")
			if err != nil {
				return err
			}
			if err := c.RemoveCustomField(slices.Index(labels, choice)); err != nil && !errors.Is(err, form.ErrFieldIndexOutOfRange) {
				return err
			}
		default:
			return nil
		}
	}
}

// PrintFields is the renderer used by the terminal form.
func PrintFields(out io.Writer) func([]model.CustomField) {
	return func(fields []model.CustomField) {
		for i, f := range fields {
			fmt.Fprintf(out, "  %d. %s: %s\n", i+1, f.Label, f.Value)
		}
	}
}
