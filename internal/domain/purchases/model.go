package purchases

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	StatusPending       PaymentStatus = "pending"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusPaid          PaymentStatus = "paid"
)

// Даты храним строками ISO (YYYY-MM-DD) — так их отдаёт и ест UI.
type Purchase struct {
	ID            int64
	SupplierID    int64
	Supplier      string
	IssueDate     string
	DeliveryDate  string
	DeliveryTerm  string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Freight       decimal.Decimal
	Total         decimal.Decimal
	Note          string
	PaymentStatus PaymentStatus
}

type Item struct {
	ID         int64
	PurchaseID int64
	ProductID  int64
	Product    string
	Qty        decimal.Decimal
	UnitPrice  decimal.Decimal
}

// Payable — денежное обязательство, ровно одно на закупку.
type Payable struct {
	ID         int64
	PurchaseID int64
	Supplier   string
	DueDate    string
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	Status     PaymentStatus
}

type ItemInput struct {
	ProductID int64
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
}

type Input struct {
	SupplierID   int64
	IssueDate    string
	DeliveryDate string
	DeliveryTerm string
	Note         string
	Discount     decimal.Decimal
	Freight      decimal.Decimal
	Items        []ItemInput
}
