package silver

import (
	"strconv"
	"strings"
	"time"

	"medallion/pkg/errors"
)

// NotAvailable is the sentinel label for null, blank, or unrecognized
// categorical values. Categorical columns never carry null downstream.
const NotAvailable = "N/A"

// customerPrefix is the system prefix some ERP customer ids carry.
const customerPrefix = "NAS"

// expandMarital maps a marital status code to its label
func expandMarital(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M":
		return "Married"
	case "S":
		return "Single"
	default:
		return NotAvailable
	}
}

// expandGender maps a gender code to its label. ERP extracts spell the word
// out, CRM uses single letters; both are accepted.
func expandGender(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M", "MALE":
		return "Male"
	case "F", "FEMALE":
		return "Female"
	default:
		return NotAvailable
	}
}

// expandProductLine maps a product line code to its label
func expandProductLine(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M":
		return "Mountain"
	case "R":
		return "Road"
	case "S":
		return "Other Sales"
	case "T":
		return "Touring"
	default:
		return NotAvailable
	}
}

// expandCountry spells out known country codes. Unrecognized values pass
// through trimmed; only blank input becomes the sentinel.
func expandCountry(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToUpper(trimmed) {
	case "DE":
		return "Germany"
	case "US", "USA":
		return "United States"
	case "":
		return NotAvailable
	default:
		return trimmed
	}
}

// parseDate8 accepts a date stored as fixed-width yyyymmdd text. Anything
// that is not exactly 8 digits forming a real date yields nil, never an
// error: length is a validity heuristic, not parsing.
func parseDate8(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 8 {
		return nil
	}
	t, err := time.Parse("20060102", trimmed)
	if err != nil {
		return nil
	}
	return &t
}

// parseDateISO parses yyyy-mm-dd text. Unparsable input yields the zero
// time, which sorts before any real date.
func parseDateISO(value string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

// costOrZero coerces a cost field to an integer, defaulting to 0 rather
// than propagating null.
func costOrZero(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// splitProductKey parses a composite product key: the first 5 characters are
// the category id (interior '-' rewritten to '_' to match the category
// lookup), everything from position 7 on is the product number. A key too
// short to carry a product number is an error: the product number is a join
// key and an empty one would be ambiguous.
func splitProductKey(key string) (categoryID, number string, err error) {
	trimmed := strings.TrimSpace(key)
	if len(trimmed) < 7 {
		return "", "", errors.New(errors.ErrCodeMalformedKey, "product key shorter than 7 characters").
			WithContext("key", trimmed)
	}
	categoryID = strings.ReplaceAll(trimmed[:5], "-", "_")
	number = trimmed[6:]
	return categoryID, number, nil
}

// errTransformRow tags a rule failure with the entity and failing row so the
// failure record can name them structurally. The cause stays on the chain for
// errors.As callers.
func errTransformRow(entity, rowID string, cause error) error {
	reason := cause.Error()
	if ae, ok := cause.(*errors.AppError); ok {
		reason = ae.Message
	}
	err := errors.TransformError(entity, rowID, reason)
	err.Cause = cause
	return err
}

// stripCustomerPrefix removes the known system prefix from an ERP customer
// id; ids without it pass through unchanged.
func stripCustomerPrefix(id string) string {
	trimmed := strings.TrimSpace(id)
	if strings.HasPrefix(trimmed, customerPrefix) {
		return trimmed[len(customerPrefix):]
	}
	return trimmed
}

// normalizeLocationID removes the separator hyphens from an ERP location
// customer id so it joins against the CRM customer key.
func normalizeLocationID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}
