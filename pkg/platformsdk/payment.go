package platformsdk

import (
	"context"
	"net/http"
)

// SubmitPayment charges the buyer's platform balance and creates an order.
// The token must belong to a verified session; the platform rejects the
// request if the balance no longer covers the amount. Returns the platform
// order ID on success.
func (c *Client) SubmitPayment(ctx context.Context, token string, req PaymentRequest) (string, error) {
	var resp paymentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/payment/process.php", token, req, &resp); err != nil {
		return "", err
	}

	if !resp.Success {
		return "", &Error{
			StatusCode: http.StatusPaymentRequired,
			Message:    envelopeMessage(resp.Error, resp.Message, "payment was rejected"),
		}
	}

	return resp.OrderID, nil
}
