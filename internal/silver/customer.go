package silver

import "strings"

// TransformCustomers cleanses and deduplicates raw customer profiles.
//
// Rows with a blank id are dropped before grouping. Within each id group the
// row with the most recent create date survives; on equal create dates the
// row arriving later in source order wins. Output preserves the source order
// of the surviving rows, so identical input always yields identical output.
func TransformCustomers(rows []RawCustomer) []Customer {
	type candidate struct {
		row   RawCustomer
		index int
	}

	best := make(map[string]candidate)
	order := make([]string, 0, len(rows))

	for i, row := range rows {
		id := strings.TrimSpace(row.ID)
		if id == "" {
			continue
		}

		cur, seen := best[id]
		if !seen {
			best[id] = candidate{row: row, index: i}
			order = append(order, id)
			continue
		}

		// Later arrival wins ties, so >= on the parsed date.
		if !parseDateISO(row.CreateDate).Before(parseDateISO(cur.row.CreateDate)) {
			best[id] = candidate{row: row, index: cur.index}
		}
	}

	out := make([]Customer, 0, len(order))
	for _, id := range order {
		row := best[id].row
		out = append(out, Customer{
			ID:         strings.TrimSpace(row.ID),
			Key:        strings.TrimSpace(row.Key),
			FirstName:  strings.TrimSpace(row.FirstName),
			LastName:   strings.TrimSpace(row.LastName),
			Marital:    expandMarital(row.Marital),
			Gender:     expandGender(row.Gender),
			CreateDate: parseDateISO(row.CreateDate),
		})
	}
	return out
}
