package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// ComputeTotal returns unitPrice × quantity. quantity must be between 1 and
// the seats still available.
func ComputeTotal(unitPrice int64, quantity, available int) (int64, error) {
	if unitPrice <= 0 {
		return 0, ValidationError{Field: "price", Reason: "must be positive"}
	}
	if quantity < 1 {
		return 0, ValidationError{Field: "quantity", Reason: "at least 1 ticket"}
	}
	if quantity > available {
		return 0, ValidationError{Field: "quantity", Reason: fmt.Sprintf("only %d seats available", available)}
	}
	if unitPrice > math.MaxInt64/int64(quantity) {
		return 0, ValidationError{Field: "price", Reason: "total is out of range"}
	}
	return unitPrice * int64(quantity), nil
}

// ParseQuantity accepts a JSON number and rejects fractional or
// non-positive values.
func ParseQuantity(n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, ValidationError{Field: "quantity", Reason: "must be a number"}
	}
	if f != math.Trunc(f) {
		return 0, ValidationError{Field: "quantity", Reason: "must be a whole number"}
	}
	if f < 1 {
		return 0, ValidationError{Field: "quantity", Reason: "at least 1 ticket"}
	}
	if f > math.MaxInt32 {
		return 0, ValidationError{Field: "quantity", Reason: "too large"}
	}
	return int(f), nil
}
