package model

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// BriefLength is the only length served free beyond the daily quota.
const BriefLength = "موجز جداً"

const (
	MinTopicLength = 3
	MaxTopicLength = 200
)

var ContentTypes = []string{
	"مطوية",
	"بحث",
	"ملخص",
	"خطة عمل",
	"محتوى لوسائل التواصل الاجتماعي",
}

var ContentLengths = []string{
	BriefLength,
	"مختصر",
	"متوسط",
	"مفصل",
	"شامل",
}

func IsValidContentType(v string) bool {
	return slices.Contains(ContentTypes, v)
}

func IsValidContentLength(v string) bool {
	return slices.Contains(ContentLengths, v)
}

// IsValidTopic measures the trimmed topic in runes.
func IsValidTopic(v string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	return n >= MinTopicLength && n <= MaxTopicLength
}

func Options() OptionsResponse {
	return OptionsResponse{
		ContentTypes:   slices.Clone(ContentTypes),
		ContentLengths: slices.Clone(ContentLengths),
	}
}
