package models

import (
	"time"
)

// OrderStatus represents the fulfilment state reported by the shop system.
type OrderStatus string

// OrderStatus values seen in the sales export.
const (
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusReturned  OrderStatus = "Returned"
)

// Order is one line of the sales dataset.
// An order id may appear on several lines (one per product category).
type Order struct {
	ID              uint        `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID         string      `json:"order_id" gorm:"column:order_id;size:64;not null;index:idx_orders_order_id"`
	OrderDate       time.Time   `json:"order_date" gorm:"column:order_date;not null;index:idx_orders_order_date"`
	ProductCategory string      `json:"product_category" gorm:"column:product_category;size:128;not null;default:''"`
	Quantity        int         `json:"quantity" gorm:"column:quantity;not null;default:0"`
	UnitPrice       float64     `json:"unit_price" gorm:"column:unit_price;not null;default:0"`
	TotalPrice      float64     `json:"total_price" gorm:"column:total_price;not null"`
	PaymentType     string      `json:"payment_type" gorm:"column:payment_type;size:64;not null;default:''"`
	OrderStatus     OrderStatus `json:"order_status" gorm:"column:order_status;size:32;not null;default:''"`
}

// TableName pins the table name used by the repository and the importer.
func (Order) TableName() string {
	return "orders"
}

// Day returns the calendar date of the order, as used for range filters and grouping.
func (o Order) Day() string {
	return o.OrderDate.Format(DateLayout)
}
