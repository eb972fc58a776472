package invoicing

import (
	"regexp"
	"strings"
)

// rfcPattern matches a Mexican RFC: 3 letters (legal entity) or 4 letters
// (individual), a yymmdd date and a 3 character homoclave.
var rfcPattern = regexp.MustCompile(`^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)

var cfdiUsages = map[string]struct{}{
	"G01": {}, "G02": {}, "G03": {},
	"I01": {}, "I02": {}, "I03": {}, "I04": {}, "I05": {}, "I06": {}, "I07": {}, "I08": {},
	"D01": {}, "D02": {}, "D03": {}, "D04": {}, "D05": {}, "D06": {}, "D07": {}, "D08": {}, "D09": {}, "D10": {},
	"S01": {}, "CP01": {}, "CN01": {},
}

var taxRegimes = map[string]struct{}{
	"601": {}, "603": {}, "605": {}, "606": {}, "607": {}, "608": {}, "610": {},
	"611": {}, "612": {}, "614": {}, "615": {}, "616": {}, "620": {}, "621": {},
	"622": {}, "623": {}, "624": {}, "625": {}, "626": {},
}

// NormalizeRFC uppercases and trims an RFC.
func NormalizeRFC(rfc string) string {
	return strings.ToUpper(strings.TrimSpace(rfc))
}

// IsValidRFC reports whether rfc is a well-formed RFC after normalization.
func IsValidRFC(rfc string) bool {
	return rfcPattern.MatchString(NormalizeRFC(rfc))
}

// IsValidCFDIUsage reports whether code is a catalog CFDI usage key.
func IsValidCFDIUsage(code string) bool {
	_, ok := cfdiUsages[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsValidTaxRegime reports whether code is a catalog tax regime key.
func IsValidTaxRegime(code string) bool {
	_, ok := taxRegimes[strings.TrimSpace(code)]
	return ok
}
