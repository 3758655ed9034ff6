package order

import "github.com/shopspring/decimal"

// CalculateTotal sums unit_price*quantity over the order's items in slice
// order, writing each item's subtotal back as it goes. A missing unit price
// counts as zero. Never fails: no items simply yields a zero total.
func CalculateTotal(o *Order) decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		unitPrice := decimal.Zero
		if it.UnitPrice != nil {
			unitPrice = *it.UnitPrice
		}
		it.Subtotal = unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.Subtotal)
	}
	return total
}
