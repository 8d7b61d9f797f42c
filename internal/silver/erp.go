package silver

import (
	"strings"
	"time"
)

// TransformErpCustomers cleanses ERP customer demographics: the known system
// prefix is stripped from the id, birth dates in the future become null, and
// the gender code expands to its label. now anchors the future-date check so
// runs are reproducible in tests.
func TransformErpCustomers(rows []RawErpCustomer, now time.Time) []ErpCustomer {
	out := make([]ErpCustomer, 0, len(rows))
	for _, row := range rows {
		var birth *time.Time
		if t := parseDateISO(row.BirthDate); !t.IsZero() && !t.After(now) {
			birth = &t
		}

		out = append(out, ErpCustomer{
			ID:        stripCustomerPrefix(row.ID),
			BirthDate: birth,
			Gender:    expandGender(row.Gender),
		})
	}
	return out
}

// TransformErpLocations cleanses ERP locations: separator hyphens leave the
// customer id and the country is fully spelled out.
func TransformErpLocations(rows []RawErpLocation) []ErpLocation {
	out := make([]ErpLocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, ErpLocation{
			ID:      normalizeLocationID(row.ID),
			Country: expandCountry(row.Country),
		})
	}
	return out
}

// TransformCategories is the trimmed pass-through copy of the product
// category lookup.
func TransformCategories(rows []RawCategory) []Category {
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, Category{
			ID:          strings.TrimSpace(row.ID),
			Category:    strings.TrimSpace(row.Category),
			Subcategory: strings.TrimSpace(row.Subcategory),
			Maintenance: strings.TrimSpace(row.Maintenance),
		})
	}
	return out
}
