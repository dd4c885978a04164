package service

import (
	"AI-Content-Creator-Backend/internal/model"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	styleEmoji      = "استخدم الرموز التعبيرية (إيموجي) بشكل مناسب.\n"
	styleSimple     = "استخدم لغة بسيطة ومباشرة.\n"
	styleAcademic   = "استخدم لغة أكاديمية ورسمية.\n"
	styleBullets    = "نظم المحتوى على شكل نقاط رئيسية.\n"
	styleDiscussion = "أضف أسئلة للمناقشة في نهاية المحتوى.\n"
)

// BuildPrompt renders the generation prompt. Custom fields are emitted in
// key order so equal requests produce equal prompts.
func BuildPrompt(req *model.ContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "الرجاء توليد %s حول الموضوع التالي: %s.\n", req.ContentType, req.MainTopic)
	fmt.Fprintf(&b, "الطول المطلوب: %s.\n", req.ContentLength)

	style := req.StyleOptions
	if style.UseEmoji {
		b.WriteString(styleEmoji)
	}
	if style.SimpleLanguage {
		b.WriteString(styleSimple)
	}
	if style.AcademicLanguage {
		b.WriteString(styleAcademic)
	}
	if style.BulletPoints {
		b.WriteString(styleBullets)
	}
	if style.DiscussionQuestions {
		b.WriteString(styleDiscussion)
	}

	for _, key := range slices.Sorted(maps.Keys(req.CustomFields)) {
		fmt.Fprintf(&b, "%s: %s.\n", key, req.CustomFields[key])
	}
	return strings.TrimSpace(b.String())
}

// PromptKey is the cache key of a prompt.
func PromptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
