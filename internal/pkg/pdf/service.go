// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/domain/order"
)

// Renderer converts an HTML document to PDF bytes
type Renderer func(html []byte) ([]byte, error)

// Service builds order receipts
type Service struct {
	company config.CompanyConfig
	render  Renderer
	now     func() time.Time
}

// NewService creates a receipt service that renders with wkhtmltopdf
func NewService(company config.CompanyConfig) *Service {
	return &Service{
		company: company,
		render:  renderWithWkhtmltopdf,
		now:     time.Now,
	}
}

// WithRenderer replaces the PDF renderer
func (s *Service) WithRenderer(r Renderer) *Service {
	cp := *s
	cp.render = r
	return &cp
}

// GenerateReceipt renders the receipt of o as PDF
func (s *Service) GenerateReceipt(o *order.Order) ([]byte, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	out, err := s.render([]byte(html))
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return out, nil
}

// RenderHTML renders the receipt of o as an HTML document
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	if o == nil {
		return "", fmt.Errorf("order is required")
	}

	data := ReceiptData{
		ReceiptNumber: ReceiptNumber(o.ID),
		IssuedAt:      s.now().Format("January 2, 2006"),
		OrderDate:     formatOrderDate(o.CreatedAt),
		Order:         o,
		Company:       s.company,
	}

	var totalCents int64
	for _, it := range o.Items {
		lineCents := toCents(it.Price * float64(it.Quantity))
		totalCents += lineCents
		data.Lines = append(data.Lines, ReceiptLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: formatMoney(toCents(it.Price)),
			LineTotal: formatMoney(lineCents),
		})
	}
	data.Subtotal = formatMoney(totalCents)
	data.Total = formatMoney(toCents(o.TotalAmount))

	tmpl := template.Must(template.New("receipt").Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// ReceiptNumber derives the printed receipt number from an order id
func ReceiptNumber(orderID string) string {
	id := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(id) > 12 {
		id = id[:12]
	}
	return "RCPT-" + id
}

func renderWithWkhtmltopdf(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// ReceiptData is the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      string
	OrderDate     string
	Order         *order.Order
	Lines         []ReceiptLine
	Subtotal      string
	Total         string
	Company       config.CompanyConfig
}

// ReceiptLine is one formatted product line
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

func formatOrderDate(createdAt string) string {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		return t.Format("January 2, 2006")
	}
	return createdAt
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func formatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 24px; color: #333; }
        .header { border-bottom: 2px solid #3f7d3a; padding-bottom: 16px; margin-bottom: 24px; }
        .company-name { font-size: 24px; font-weight: bold; color: #3f7d3a; }
        .title { font-size: 20px; margin-top: 8px; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { padding: 8px; border-bottom: 1px solid #eee; text-align: left; }
        td.num, th.num { text-align: right; }
        .total { font-weight: bold; font-size: 16px; }
        .footer { margin-top: 32px; font-size: 12px; color: #777; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-name">{{.Company.Name}}</div>
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        {{if .Company.Email}}<div>{{.Company.Email}}</div>{{end}}
        <div class="title">Receipt {{.ReceiptNumber}}</div>
        <div>Issued {{.IssuedAt}}</div>
    </div>

    <div>
        <strong>Order:</strong> {{.Order.ID}}<br>
        <strong>Placed:</strong> {{.OrderDate}}<br>
        <strong>Status:</strong> {{.Order.Status}}<br>
        <strong>Buyer:</strong> {{.Order.BuyerName}} ({{.Order.BuyerContact}})<br>
        <strong>Ship to:</strong> {{.Order.ShippingAddress}}
    </div>

    <table>
        <thead>
            <tr><th>Product</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.LineTotal}}</td></tr>
            {{end}}
        </tbody>
        <tfoot>
            <tr><td colspan="3" class="num">Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
            <tr class="total"><td colspan="3" class="num">Total</td><td class="num">{{.Total}}</td></tr>
        </tfoot>
    </table>

    <div class="footer">
        Thank you for buying from local farmers.
        {{if .Company.Website}}{{.Company.Website}}{{end}}
    </div>
</body>
</html>`
