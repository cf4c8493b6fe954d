// internal/domain/checkout/errors.go
package checkout

import "errors"

var (
	ErrEmptyShippingAddress = errors.New("Please enter a shipping address.")
	ErrEmptyCart            = errors.New("Your cart is empty.")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
)

const submitFailedMessage = "Failed to place order."

// OrderSubmissionError is returned when the marketplace rejects or never
// answers an order. Message is safe to show to the buyer.
type OrderSubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *OrderSubmissionError) Error() string {
	return e.Message
}

func (e *OrderSubmissionError) Unwrap() error {
	return e.Err
}

type serverError interface {
	StatusCode() int
	ServerMessage() string
}

func newSubmissionError(err error) *OrderSubmissionError {
	out := &OrderSubmissionError{Message: submitFailedMessage, Err: err}
	var se serverError
	if errors.As(err, &se) {
		out.Status = se.StatusCode()
		if msg := se.ServerMessage(); msg != "" {
			out.Message = msg
		}
	}
	return out
}
