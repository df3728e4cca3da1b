// Package validation holds the pure field validators used by the profile,
// sign-up and appointment flows. Validators return "" on success and a
// localized message otherwise; the locale only selects the message text.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/salutdigital/portal/internal/platform/i18n"
)

var (
	nameRe        = regexp.MustCompile(`^[\p{L}\s]+$`)
	familyNamesRe = regexp.MustCompile(`^\p{L}+\s+\p{L}+$`)
	healthCardRe  = regexp.MustCompile(`^[A-Z]{4}\s\d\s\d{6}\s\d{2}\s\d$`)
	nationalIDRe  = regexp.MustCompile(`^\d{8}[A-Z]$`)
	emailRe       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// PasswordSymbols is the punctuation a password must draw at least one
// character from. No other punctuation is accepted.
const PasswordSymbols = "@$!%*?&"

const minPasswordLen = 8

func ValidateName(loc i18n.Locale, value string) string {
	if !nameRe.MatchString(value) {
		return i18n.T(loc, i18n.MsgInvalidName)
	}
	return ""
}

// ValidateFamilyNames requires exactly two letter-only tokens.
func ValidateFamilyNames(loc i18n.Locale, value string) string {
	if !familyNamesRe.MatchString(value) {
		return i18n.T(loc, i18n.MsgInvalidFamilyNames)
	}
	return ""
}

// ValidateHealthCard checks the "LLLL D DDDDDD DD D" layout, for example
// "ABCD 1 234567 89 0".
func ValidateHealthCard(loc i18n.Locale, value string) string {
	if !healthCardRe.MatchString(value) {
		return i18n.T(loc, i18n.MsgInvalidHealthCard)
	}
	return ""
}

// ValidateNationalID checks a DNI: eight digits and an uppercase letter.
func ValidateNationalID(loc i18n.Locale, value string) string {
	if !nationalIDRe.MatchString(value) {
		return i18n.T(loc, i18n.MsgInvalidNationalID)
	}
	return ""
}

func ValidateEmail(loc i18n.Locale, value string) string {
	if !emailRe.MatchString(value) {
		return i18n.T(loc, i18n.MsgInvalidEmail)
	}
	return ""
}

// ValidatePassword reports whether value has at least eight characters drawn
// from ASCII letters, digits and PasswordSymbols, with at least one of each
// of lowercase, uppercase, digit and symbol.
func ValidatePassword(value string) bool {
	if len(value) < minPasswordLen {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range value {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// Field names reported in ProfileErrors and CredentialErrors. They match the
// JSON and document keys of the profile.
const (
	FieldName        = "nombre"
	FieldFamilyNames = "apellidos"
	FieldHealthCard  = "tarjetaSanitaria"
	FieldNationalID  = "dni"
	FieldEmail       = "email"
	FieldPassword    = "password"
)

// ProfileFields are the free-text profile attributes checked together on
// submit.
type ProfileFields struct {
	Name        string
	FamilyNames string
	HealthCard  string
	NationalID  string
}

// ProfileErrors runs every profile validator and returns the failures keyed
// by field. An empty map means the profile may be saved.
func ProfileErrors(loc i18n.Locale, p ProfileFields) map[string]string {
	errs := map[string]string{}
	collect(errs, FieldName, ValidateName(loc, p.Name))
	collect(errs, FieldFamilyNames, ValidateFamilyNames(loc, p.FamilyNames))
	collect(errs, FieldHealthCard, ValidateHealthCard(loc, p.HealthCard))
	collect(errs, FieldNationalID, ValidateNationalID(loc, p.NationalID))
	return errs
}

// CredentialErrors checks a sign-up email and password pair.
func CredentialErrors(loc i18n.Locale, email, password string) map[string]string {
	errs := map[string]string{}
	collect(errs, FieldEmail, ValidateEmail(loc, email))
	if !ValidatePassword(password) {
		errs[FieldPassword] = i18n.T(loc, i18n.MsgWeakPassword)
	}
	return errs
}

func collect(errs map[string]string, field, msg string) {
	if msg != "" {
		errs[field] = msg
	}
}
