// Package validator provides a Validator type for accumulating field-level
// validation errors, plus the format rules shared by write-time and
// search-time validation of owners and cars.
package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PersonNameRX matches names made of Latin letters, the Polish accented
// letters and hyphens. Whitespace is not allowed.
var PersonNameRX = regexp.MustCompile(`^[A-Za-ząćęłńóśżźĄĆĘŁŃÓŚŻŹ-]*$`)

// DigitsRX matches strings made only of ASCII digits.
var DigitsRX = regexp.MustCompile(`^[0-9]*$`)

// PhoneLength is the exact number of digits in a phone number.
const PhoneLength = 9

// DateLayout is the only accepted wire format for dates.
const DateLayout = "2006-01-02"

const (
	MsgRequired        = "This field is required."
	MsgBlank           = "This field may not be blank."
	MsgPhoneDigits     = "Phone number can contain only digits"
	MsgPhoneTooShort   = "Phone number is too short - 9 digits required"
	MsgPhoneTooLong    = "Phone number is too long - 9 digits required"
	MsgDateFormat      = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgDateFromFuture  = "Production date cannot be from the future."
	MsgIntegerRequired = "A valid integer is required."
)

// Validator holds field names mapped to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
	order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// The first failure for a field is the one that is kept.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.order = append(v.order, key)
	}
}

// Check adds an error for key with message only when ok is false.
//
//	v.Check(len(name) > 0, "name", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// First returns the earliest recorded failure as a single-entry map,
// or nil when the validator is valid.
func (v *Validator) First() map[string]string {
	if len(v.order) == 0 {
		return nil
	}
	key := v.order[0]
	return map[string]string{key: v.Errors[key]}
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	return slices.Contains(list, value)
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// MaxChars returns true if value has at most n characters (runes, not bytes).
func MaxChars(value string, n int) bool {
	return len([]rune(value)) <= n
}

// PersonName checks a name or surname value under key.
func (v *Validator) PersonName(key, value string) {
	v.Check(Matches(value, PersonNameRX), key, key+" can contain only letters and '-' without whitespaces")
}

// Phone checks that value is exactly PhoneLength digits. Non-digit
// characters are reported before length problems.
func (v *Validator) Phone(key, value string) {
	switch {
	case !Matches(value, DigitsRX):
		v.AddError(key, MsgPhoneDigits)
	case len(value) < PhoneLength:
		v.AddError(key, MsgPhoneTooShort)
	case len(value) > PhoneLength:
		v.AddError(key, MsgPhoneTooLong)
	}
}

// NotFuture checks that date is not later than today's system date.
func (v *Validator) NotFuture(key string, date time.Time) {
	v.Check(!date.After(Today()), key, MsgDateFromFuture)
}

// DecimalPrecision checks that d fits a fixed-point column holding
// maxDigits digits, decimalPlaces of them after the point. Digits are
// counted as written, so trailing zeros after the point count.
func (v *Validator) DecimalPrecision(key string, d decimal.Decimal, maxDigits, decimalPlaces int) {
	digits, decimals := d.NumDigits(), 0
	switch exp := int(d.Exponent()); {
	case exp >= 0:
		digits += exp
	case -exp > digits:
		digits, decimals = -exp, -exp
	default:
		decimals = -exp
	}

	switch {
	case digits > maxDigits:
		v.AddError(key, fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits))
	case decimals > decimalPlaces:
		v.AddError(key, fmt.Sprintf("Ensure that there are no more than %d decimal places.", decimalPlaces))
	case digits-decimals > maxDigits-decimalPlaces:
		v.AddError(key, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxDigits-decimalPlaces))
	}
}

// Ordering checks that value is one of the declared sortable fields.
// accepted may hold extra spellings (such as a "-" prefixed descending
// form) that are valid but not advertised in the error message.
func (v *Validator) Ordering(key, value string, fields []string, accepted ...string) {
	if In(value, fields...) || In(value, accepted...) {
		return
	}
	v.AddError(key, "Ordering should be one of the following: "+strings.Join(fields, ", "))
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Today returns the current local calendar date as midnight UTC, so it
// compares directly with dates returned by ParseDate.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
