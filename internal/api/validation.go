package api

import (
	"AI-Content-Creator-Backend/internal/model"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the content request tags to gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	rules := map[string]func(string) bool{
		"topic":          model.IsValidTopic,
		"content_type":   model.IsValidContentType,
		"content_length": model.IsValidContentLength,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// validationDetail turns a binding error into the Arabic detail message.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "بيانات الطلب غير صالحة."
	}
	switch verrs[0].Field() {
	case "MainTopic":
		return fmt.Sprintf("يجب أن يكون الموضوع الرئيسي بين %d و %d حرفاً.", model.MinTopicLength, model.MaxTopicLength)
	case "ContentType":
		return "نوع المحتوى غير صالح."
	case "ContentLength":
		return "طول المحتوى غير صالح."
	default:
		return "بيانات الطلب غير صالحة."
	}
}
