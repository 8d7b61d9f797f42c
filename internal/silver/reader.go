package silver

import (
	"context"
	"database/sql"
	"fmt"

	"medallion/pkg/errors"
)

// Raw rowset readers. Each streams one bronze table through the batch
// transaction so the whole run sees a single snapshot.

// dateText renders a DATE column in the yyyy-mm-dd form the transforms
// parse. The landing tables type cst_create_date and prd_start_dt as DATE,
// so the driver hands back time.Time rather than the extract's text.
func dateText(v sql.NullTime) string {
	if !v.Valid {
		return ""
	}
	return v.Time.Format("2006-01-02")
}

func fetchCustomers(ctx context.Context, tx *sql.Tx, table string) ([]RawCustomer, error) {
	query := fmt.Sprintf(
		"SELECT cst_id, cst_key, cst_firstname, cst_lastname, cst_marital_status, cst_gndr, cst_create_date FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw customers", query, err)
	}
	defer rows.Close()

	var out []RawCustomer
	for rows.Next() {
		var id, key, first, last, marital, gender sql.NullString
		var created sql.NullTime
		if err := rows.Scan(&id, &key, &first, &last, &marital, &gender, &created); err != nil {
			return nil, err
		}
		out = append(out, RawCustomer{
			ID:         id.String,
			Key:        key.String,
			FirstName:  first.String,
			LastName:   last.String,
			Marital:    marital.String,
			Gender:     gender.String,
			CreateDate: dateText(created),
		})
	}
	return out, rows.Err()
}

func fetchProducts(ctx context.Context, tx *sql.Tx, table string) ([]RawProduct, error) {
	query := fmt.Sprintf(
		"SELECT prd_id, prd_key, prd_nm, prd_cost, prd_line, prd_start_dt FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw products", query, err)
	}
	defer rows.Close()

	var out []RawProduct
	for rows.Next() {
		var id, key, name, cost, line sql.NullString
		var start sql.NullTime
		if err := rows.Scan(&id, &key, &name, &cost, &line, &start); err != nil {
			return nil, err
		}
		out = append(out, RawProduct{
			ID:        id.String,
			Key:       key.String,
			Name:      name.String,
			Cost:      cost.String,
			Line:      line.String,
			StartDate: dateText(start),
		})
	}
	return out, rows.Err()
}

func fetchSales(ctx context.Context, tx *sql.Tx, table string) ([]RawSale, error) {
	query := fmt.Sprintf(
		"SELECT sls_ord_num, sls_prd_key, sls_cust_id, sls_order_dt, sls_ship_dt, sls_due_dt, sls_sales, sls_quantity, sls_price FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw sales", query, err)
	}
	defer rows.Close()

	var out []RawSale
	for rows.Next() {
		var ord, prd, cust, orderDt, shipDt, dueDt sql.NullString
		var sales, price sql.NullFloat64
		var quantity sql.NullInt64
		if err := rows.Scan(&ord, &prd, &cust, &orderDt, &shipDt, &dueDt, &sales, &quantity, &price); err != nil {
			return nil, err
		}

		raw := RawSale{
			OrderNumber: ord.String,
			ProductKey:  prd.String,
			CustomerID:  cust.String,
			OrderDate:   orderDt.String,
			ShipDate:    shipDt.String,
			DueDate:     dueDt.String,
		}
		if sales.Valid {
			v := sales.Float64
			raw.Sales = &v
		}
		if quantity.Valid {
			v := int(quantity.Int64)
			raw.Quantity = &v
		}
		if price.Valid {
			v := price.Float64
			raw.Price = &v
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func fetchErpCustomers(ctx context.Context, tx *sql.Tx, table string) ([]RawErpCustomer, error) {
	query := fmt.Sprintf("SELECT cid, bdate, gen FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw ERP customers", query, err)
	}
	defer rows.Close()

	var out []RawErpCustomer
	for rows.Next() {
		var id, birth, gender sql.NullString
		if err := rows.Scan(&id, &birth, &gender); err != nil {
			return nil, err
		}
		out = append(out, RawErpCustomer{ID: id.String, BirthDate: birth.String, Gender: gender.String})
	}
	return out, rows.Err()
}

func fetchErpLocations(ctx context.Context, tx *sql.Tx, table string) ([]RawErpLocation, error) {
	query := fmt.Sprintf("SELECT cid, cntry FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw ERP locations", query, err)
	}
	defer rows.Close()

	var out []RawErpLocation
	for rows.Next() {
		var id, country sql.NullString
		if err := rows.Scan(&id, &country); err != nil {
			return nil, err
		}
		out = append(out, RawErpLocation{ID: id.String, Country: country.String})
	}
	return out, rows.Err()
}

func fetchCategories(ctx context.Context, tx *sql.Tx, table string) ([]RawCategory, error) {
	query := fmt.Sprintf("SELECT id, cat, subcat, maintenance FROM %s", table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.SQLError("Failed to read raw categories", query, err)
	}
	defer rows.Close()

	var out []RawCategory
	for rows.Next() {
		var id, cat, subcat, maintenance sql.NullString
		if err := rows.Scan(&id, &cat, &subcat, &maintenance); err != nil {
			return nil, err
		}
		out = append(out, RawCategory{
			ID:          id.String,
			Category:    cat.String,
			Subcategory: subcat.String,
			Maintenance: maintenance.String,
		})
	}
	return out, rows.Err()
}
