package platformsdk

// ============================================================================
// Identity Types
// ============================================================================

// User is the platform account profile returned by token verification, login
// and the OAuth code exchange. Balance is in the currency's smallest unit
// (VND has no subunit, so it is the plain amount).
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Balance  int64  `json:"balance"`
	Avatar   string `json:"avatar,omitempty"`
}

// LoginResult is the session material returned by the login and code-exchange
// endpoints: the verified profile plus the opaque bearer token.
type LoginResult struct {
	User  User
	Token string
}

// sessionResponse is the wire envelope shared by login and code exchange.
type sessionResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// verifyResponse is the wire envelope of the token verification endpoint.
type verifyResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Catalog Types
// ============================================================================

// Shop is the merchant profile rendered on the storefront header and home page.
type Shop struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Logo          string     `json:"logo,omitempty"`
	Banner        string     `json:"banner,omitempty"`
	Rating        float64    `json:"rating"`
	TotalReviews  int        `json:"total_reviews"`
	TotalProducts int        `json:"total_products"`
	TotalOrders   int        `json:"total_orders"`
	CreatedAt     string     `json:"created_at"`
	Owner         ShopOwner  `json:"owner"`
	Categories    []Category `json:"categories,omitempty"`
}

// ShopOwner is the merchant contact block embedded in Shop.
type ShopOwner struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog entry. Prices are VND integers; SalePrice of zero
// means no discount is active. Products with variants price and stock each
// variant separately.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	SalePrice   int64            `json:"sale_price,omitempty"`
	Image       string           `json:"image,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Stock       int              `json:"stock"`
	Rating      float64          `json:"rating,omitempty"`
	Sold        int              `json:"sold,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

// ProductVariant is one purchasable variation of a product, carrying its
// own price and stock.
type ProductVariant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
}

// ============================================================================
// Cart & Payment Types
// ============================================================================

// CartItem is one line of the storefront cart, and the wire form of a
// payment item. VariantID is nil for products without variants.
type CartItem struct {
	ProductID   int64  `json:"product_id"`
	VariantID   *int64 `json:"variant_id,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Name        string `json:"name"`
	VariantName string `json:"variant_name,omitempty"`
	Image       string `json:"image,omitempty"`
}

// CustomerInfo is the delivery block submitted with a payment.
type CustomerInfo struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	Note     string `json:"note,omitempty"`
}

// PaymentRequest is the payload of the payment submission endpoint. Amount
// must equal the sum of item price x quantity; the platform re-checks it
// against the buyer's balance.
type PaymentRequest struct {
	Amount       int64        `json:"amount"`
	Subdomain    string       `json:"subdomain"`
	Items        []CartItem   `json:"items"`
	CustomerInfo CustomerInfo `json:"customer_info"`
}

// paymentResponse is the wire envelope of the payment endpoint.
type paymentResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
