package combo

// Stock issue classifications.
const (
	IssueOutOfStock   = "out_of_stock"
	IssueInsufficient = "insufficient"
)

// StockIssue reports one constituent whose stock cannot cover the combo.
type StockIssue struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Issue       string  `json:"issue"`
	Required    float64 `json:"required"`
	Available   float64 `json:"available"`
}

// CheckStockIssues compares each constituent's required quantity against the
// catalog stock. The returned slice preserves the combo's product order; an
// empty slice means the combo is purchasable. Blocking checkout on non-empty
// issues is the caller's responsibility.
func CheckStockIssues(c Combo, products map[string]Product) []StockIssue {
	issues := make([]StockIssue, 0)
	for _, productID := range c.ProductIDs {
		product, ok := products[productID]
		if !ok {
			continue
		}
		required := c.QuantityFor(productID)
		switch {
		case product.Stock <= 0:
			issues = append(issues, StockIssue{
				ProductID:   productID,
				ProductName: product.Name,
				Issue:       IssueOutOfStock,
				Required:    required,
				Available:   0,
			})
		case product.Stock < required:
			issues = append(issues, StockIssue{
				ProductID:   productID,
				ProductName: product.Name,
				Issue:       IssueInsufficient,
				Required:    required,
				Available:   product.Stock,
			})
		}
	}
	return issues
}
