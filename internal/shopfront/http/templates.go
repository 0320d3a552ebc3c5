package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/chommo/shopfront/pkg/platformsdk"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps page names to parsed templates. Each page is the shared layout
// plus its own content block, parsed once at startup.
var pages = func() map[string]*template.Template {
	names := []string{
		"home", "products", "product", "cart", "checkout",
		"login_success", "login_error", "error",
	}

	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return out
}()

var templateFuncs = template.FuncMap{
	"vnd":         formatVND,
	"addOne":      func(n int) int { return n + 1 },
	"subtractOne": func(n int) int { return n - 1 },
	"subtotal": func(item platformsdk.CartItem) int64 {
		return item.Price * int64(item.Quantity)
	},
}

// formatVND renders an amount with thousands separators, e.g. 1234500 →
// "1.234.500₫". VND has no subunit.
func formatVND(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return sign + string(out) + "₫"
}

// pageData is the model every HTML page is rendered with.
type pageData struct {
	Title string
	Shop  *platformsdk.Shop
	User  *platformsdk.User

	// CartCount feeds the header badge.
	CartCount int

	// Page-specific payloads; unused fields stay zero.
	Products []platformsdk.Product
	Product  *platformsdk.Product
	Cart     []platformsdk.CartItem
	Total    int64
	Query    string
	Page     int

	// ReturnTo is where the login success page navigates after its delay.
	ReturnTo string

	// Message carries the user-facing text on error pages.
	Message string
}

// renderPage writes an HTML page. Render failures after the header is
// written cannot be recovered; the error is returned for logging only.
func renderPage(w http.ResponseWriter, status int, name string, data pageData) error {
	tmpl, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "layout.html", data)
}
