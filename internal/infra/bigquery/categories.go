package bigquery

import "cloud.google.com/go/bigquery"

type CategoryRow struct {
	CategoryID       string              `bigquery:"category_id"`        // REQUIRED
	ParentCategoryID bigquery.NullString `bigquery:"parent_category_id"` // NULLABLE

	Name         string `bigquery:"name"`          // REQUIRED
	CategoryType string `bigquery:"category_type"` // REQUIRED, e.g. expense/income

	Icon  bigquery.NullString `bigquery:"icon"`  // NULLABLE
	Color bigquery.NullString `bigquery:"color"` // NULLABLE
}
