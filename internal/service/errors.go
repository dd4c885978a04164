package service

import "errors"

var (
	ErrAIService       = errors.New("ai service error")
	ErrPaymentRequired = errors.New("payment required")
	ErrDelivery        = errors.New("failed to deliver document")
	ErrRender          = errors.New("failed to render document")
	ErrUsage           = errors.New("usage store unavailable")
)
