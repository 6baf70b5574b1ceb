package contact

import (
	"strings"
	"time"
)

// InquiryType is a selectable reason for contact.
type InquiryType struct {
	Value string
	Label string
}

// InquiryTypes lists the options of the inquiry select in display order.
var InquiryTypes = []InquiryType{
	{"wedding", "Wedding Celebration"},
	{"corporate", "Corporate Event"},
	{"festival", "Festival Celebration"},
	{"bulk", "Bulk Order"},
	{"wholesale", "Wholesale Inquiry"},
	{"product", "Product Information"},
	{"safety", "Safety Guidelines"},
	{"support", "Customer Support"},
	{"other", "Other"},
}

var required = []Field{FieldName, FieldEmail, FieldPhone, FieldInquiryType, FieldSubject, FieldMessage}

// FieldErrors maps a field to a message for the visitor. Empty means valid.
type FieldErrors map[Field]string

// Validate applies the input-layer constraints a form must meet before Submit
// is called. Values are trimmed in place.
func Validate(v *Values) FieldErrors {
	errs := FieldErrors{}
	for _, f := range Fields {
		if p, ok := v.field(f); ok {
			*p = strings.TrimSpace(*p)
		}
	}
	for _, f := range required {
		if v.Get(f) == "" {
			errs[f] = "This field is required."
		}
	}
	if v.Email != "" && !strings.Contains(v.Email, "@") {
		errs[FieldEmail] = "Enter a valid email address."
	}
	if v.InquiryType != "" && !knownInquiry(v.InquiryType) {
		errs[FieldInquiryType] = "Choose an inquiry type."
	}
	if v.EventDate != "" {
		if _, err := time.Parse(time.DateOnly, v.EventDate); err != nil {
			errs[FieldEventDate] = "Use the format YYYY-MM-DD."
		}
	}
	return errs
}

func knownInquiry(value string) bool {
	for _, it := range InquiryTypes {
		if it.Value == value {
			return true
		}
	}
	return false
}
