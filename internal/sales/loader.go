package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// Column headers of the sales export.
const (
	ColOrderID         = "Order ID"
	ColOrderDate       = "Order Date"
	ColProductCategory = "Product Category"
	ColQuantity        = "Quantity"
	ColUnitPrice       = "Unit Price"
	ColTotalPrice      = "Total Price"
	ColPaymentType     = "Payment Type"
	ColOrderStatus     = "Order Status"
)

// ReportColumns is the column order of the CSV report.
var ReportColumns = []string{
	ColOrderID,
	ColOrderDate,
	ColProductCategory,
	ColQuantity,
	ColUnitPrice,
	ColTotalPrice,
	ColPaymentType,
	ColOrderStatus,
}

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
}

// LoadStats describes one load pass.
type LoadStats struct {
	Rows    int `json:"rows"`
	Orders  int `json:"orders"`
	Dropped int `json:"dropped"`
}

// LoadFile opens path and parses it with LoadCSV.
func LoadFile(path string) ([]models.Order, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

// LoadCSV parses the sales export. Columns are located by header name.
// Rows without a usable order date, order id or total price are dropped and counted;
// the optional columns default to their zero value when blank or malformed.
func LoadCSV(r io.Reader) ([]models.Order, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Order{}, stats, nil
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{ColOrderID, ColOrderDate, ColTotalPrice} {
		if _, ok := idx[required]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	orders := make([]models.Order, 0, 1024)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		id := field(rec, ColOrderID)
		date, dateErr := parseOrderDate(field(rec, ColOrderDate))
		total, totalErr := strconv.ParseFloat(field(rec, ColTotalPrice), 64)
		if id == "" || dateErr != nil || totalErr != nil {
			stats.Dropped++
			continue
		}

		qty, _ := strconv.Atoi(field(rec, ColQuantity))
		unit, _ := strconv.ParseFloat(field(rec, ColUnitPrice), 64)

		orders = append(orders, models.Order{
			OrderID:         id,
			OrderDate:       date,
			ProductCategory: field(rec, ColProductCategory),
			Quantity:        qty,
			UnitPrice:       unit,
			TotalPrice:      total,
			PaymentType:     field(rec, ColPaymentType),
			OrderStatus:     models.OrderStatus(field(rec, ColOrderStatus)),
		})
	}

	stats.Orders = len(orders)
	return orders, stats, nil
}

func parseOrderDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidDate)
}

// WriteReport writes orders as CSV rows in ReportColumns order, header first.
func WriteReport(w *csv.Writer, orders []models.Order) error {
	if err := w.Write(ReportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range orders {
		row := []string{
			o.OrderID,
			formatOrderDate(o.OrderDate),
			o.ProductCategory,
			strconv.Itoa(o.Quantity),
			strconv.FormatFloat(o.UnitPrice, 'f', -1, 64),
			strconv.FormatFloat(o.TotalPrice, 'f', -1, 64),
			o.PaymentType,
			string(o.OrderStatus),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", o.OrderID, err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatOrderDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(models.DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}
