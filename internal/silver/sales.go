package silver

import (
	"math"
	"strings"

	"medallion/pkg/errors"
)

// roundingEpsilon absorbs the original integer rounding when comparing a
// sales amount against quantity times price.
const roundingEpsilon = 0.01

// TransformSales cleanses raw sales lines and reconciles the sales, quantity
// and price measures so that sales == quantity * price holds afterwards.
//
// Sales is repaired first: when null, non-positive, or inconsistent with
// quantity * |price|, it is recomputed as quantity * |price|. Price is then
// repaired from the ORIGINAL sales and quantity — sales / quantity — when it
// was null or non-positive and the original sales was usable; when sales had
// to be repaired from |price|, the price stays |price| so the measures remain
// mutually consistent. A row whose measures cannot be reconciled (missing
// quantity, zero quantity under price repair, or sales and price both
// unusable) aborts the load.
func TransformSales(rows []RawSale) ([]Sale, error) {
	out := make([]Sale, 0, len(rows))

	for _, row := range rows {
		orderNumber := strings.TrimSpace(row.OrderNumber)

		if row.Quantity == nil {
			return nil, errors.New(errors.ErrCodeReconcileConflict, "sales line has no quantity").
				WithContext("entity", "crm_sales_details").
				WithContext("row_id", orderNumber)
		}
		quantity := *row.Quantity

		sales, price, err := reconcile(row.Sales, quantity, row.Price)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReconcileConflict, "sales line cannot be reconciled").
				WithContext("entity", "crm_sales_details").
				WithContext("row_id", orderNumber)
		}

		out = append(out, Sale{
			OrderNumber: orderNumber,
			ProductKey:  strings.TrimSpace(row.ProductKey),
			CustomerID:  strings.TrimSpace(row.CustomerID),
			OrderDate:   parseDate8(row.OrderDate),
			ShipDate:    parseDate8(row.ShipDate),
			DueDate:     parseDate8(row.DueDate),
			Sales:       sales,
			Quantity:    quantity,
			Price:       price,
		})
	}
	return out, nil
}

// reconcile applies sales repair, then price repair. The two repairs never
// feed each other: a sales amount recomputed from |price| pins the price to
// |price|, and a derived price divides the original sales, so the returned
// pair always satisfies sales == quantity * price.
func reconcile(rawSales *float64, quantity int, rawPrice *float64) (sales, price float64, err error) {
	var absPrice float64
	havePrice := rawPrice != nil
	if havePrice {
		absPrice = math.Abs(*rawPrice)
	}

	// Sales survives only when positive and, where a price exists to check
	// against, consistent with quantity * |price|.
	salesValid := rawSales != nil && *rawSales > 0 &&
		(!havePrice || math.Abs(*rawSales-float64(quantity)*absPrice) <= roundingEpsilon)

	priceValid := havePrice && *rawPrice > 0

	switch {
	case salesValid && priceValid:
		return *rawSales, absPrice, nil

	case salesValid:
		// Price is missing or non-positive; derive it from the original
		// sales and quantity.
		if quantity == 0 {
			return 0, 0, errors.New(errors.ErrCodeReconcileConflict,
				"price repair would divide by zero quantity")
		}
		return *rawSales, *rawSales / float64(quantity), nil

	case havePrice:
		// Sales is unusable; recompute it from quantity and |price|. The
		// price stays |price| so the pair remains consistent.
		return float64(quantity) * absPrice, absPrice, nil

	default:
		return 0, 0, errors.New(errors.ErrCodeReconcileConflict,
			"sales and price are both missing or unusable")
	}
}
