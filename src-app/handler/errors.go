package handler

import (
	"errors"

	"rooydad/src-app/model"
)

// Messages of these errors are shown to the user as is.
var (
	ErrMissingTitle   = errors.New("لطفاً عنوان و نوع را پر کنید!")
	ErrMissingType    = errors.New("لطفاً نوع رویداد را انتخاب کنید!")
	ErrMissingWeekday = errors.New("لطفاً روز تکرار را انتخاب کنید!")
	ErrInvalidDate    = errors.New("فرمت تاریخ نامعتبر است! از فرمت YYYY-MM-DD استفاده کنید.")
	ErrInvalidEndDate = errors.New("فرمت تاریخ پایان نامعتبر است!")
	ErrInvalidTime    = errors.New("فرمت ساعت نامعتبر است! از فرمت HH:MM استفاده کنید.")
	ErrInvalidSearch  = errors.New("فرمت تاریخ شمسی نامعتبر!")
	ErrInvalidMode    = errors.New("حالت نمایش نامعتبر است!")
	ErrNotFound       = model.ErrEventNotFound
)

// UserMessage picks the text to show for err: the message of a known input
// error, or a generic one.
func UserMessage(err error) string {
	for _, known := range []error{
		ErrMissingTitle,
		ErrMissingType,
		ErrMissingWeekday,
		ErrInvalidDate,
		ErrInvalidEndDate,
		ErrInvalidTime,
		ErrInvalidSearch,
		ErrInvalidMode,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, ErrNotFound) {
		return "رویداد یافت نشد!"
	}
	return "خطای داخلی: " + err.Error()
}
