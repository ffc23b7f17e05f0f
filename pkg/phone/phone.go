package phone

import (
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number has no country prefix
const DefaultRegion = "US"

// ErrEmpty is returned for blank numbers
var ErrEmpty = errors.New("phone number cannot be empty")

// ErrInvalid is returned for numbers that parse but are not dialable
var ErrInvalid = errors.New("invalid phone number")

// PhoneType is the line type of a number
type PhoneType string

const (
	TypeFixedLine         PhoneType = "FIXED_LINE"
	TypeMobile            PhoneType = "MOBILE"
	TypeFixedLineOrMobile PhoneType = "FIXED_LINE_OR_MOBILE"
	TypeTollFree          PhoneType = "TOLL_FREE"
	TypeVoip              PhoneType = "VOIP"
	TypeUnknown           PhoneType = "UNKNOWN"
)

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid        bool      `json:"is_valid"`
	E164Format     string    `json:"e164_format"`
	NationalFormat string    `json:"national_format"`
	CountryCode    string    `json:"country_code"`
	PhoneType      PhoneType `json:"phone_type"`
}

func parse(number, region string) (*phonenumbers.PhoneNumber, error) {
	if number == "" {
		return nil, ErrEmpty
	}
	if region == "" {
		region = DefaultRegion
	}
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}
	return parsed, nil
}

// ValidatePhone validates a number and returns its formats and line type
func ValidatePhone(number, region string) (*ValidationResult, error) {
	parsed, err := parse(number, region)
	if err != nil {
		return nil, err
	}
	return &ValidationResult{
		IsValid:        phonenumbers.IsValidNumber(parsed),
		E164Format:     phonenumbers.Format(parsed, phonenumbers.E164),
		NationalFormat: phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		CountryCode:    phonenumbers.GetRegionCodeForNumber(parsed),
		PhoneType:      phoneType(phonenumbers.GetNumberType(parsed)),
	}, nil
}

// NormalizePhone normalizes a phone number to E.164 format.
func NormalizePhone(number, region string) (string, error) {
	parsed, err := parse(number, region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// NationalFormat renders a number the way it is written locally, or returns
// it unchanged when it cannot be parsed
func NationalFormat(number, region string) string {
	parsed, err := parse(number, region)
	if err != nil {
		return number
	}
	return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
}

func phoneType(t phonenumbers.PhoneNumberType) PhoneType {
	switch t {
	case phonenumbers.FIXED_LINE:
		return TypeFixedLine
	case phonenumbers.MOBILE:
		return TypeMobile
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return TypeFixedLineOrMobile
	case phonenumbers.TOLL_FREE:
		return TypeTollFree
	case phonenumbers.VOIP:
		return TypeVoip
	default:
		return TypeUnknown
	}
}
