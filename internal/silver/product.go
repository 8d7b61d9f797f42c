package silver

import (
	"sort"
	"strings"
)

// TransformProducts cleanses raw product versions and derives each version's
// validity interval.
//
// Versions are grouped by the derived product number and sorted by start
// date ascending, stable on arrival order. Each version's end date is the
// next version's start date minus one day; the latest version carries nil.
// Equal start dates within a group keep LEAD semantics: the earlier arrival
// closes one day before its successor opens.
//
// A key too short to split is fatal: no per-row skip semantics exist.
func TransformProducts(rows []RawProduct) ([]Product, error) {
	type versioned struct {
		product Product
		arrival int
	}

	groups := make(map[string][]versioned)
	order := make([]string, 0, len(rows))

	for i, row := range rows {
		categoryID, number, err := splitProductKey(row.Key)
		if err != nil {
			return nil, errTransformRow("crm_prd_info", strings.TrimSpace(row.ID), err)
		}

		p := Product{
			ID:         strings.TrimSpace(row.ID),
			CategoryID: categoryID,
			Number:     number,
			Name:       strings.TrimSpace(row.Name),
			Cost:       costOrZero(row.Cost),
			Line:       expandProductLine(row.Line),
			StartDate:  parseDateISO(row.StartDate),
		}

		if _, seen := groups[number]; !seen {
			order = append(order, number)
		}
		groups[number] = append(groups[number], versioned{product: p, arrival: i})
	}

	out := make([]Product, 0, len(rows))
	for _, number := range order {
		group := groups[number]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].product.StartDate.Before(group[b].product.StartDate)
		})

		for i := range group {
			if i+1 < len(group) {
				end := group[i+1].product.StartDate.AddDate(0, 0, -1)
				group[i].product.EndDate = &end
			}
			out = append(out, group[i].product)
		}
	}
	return out, nil
}
