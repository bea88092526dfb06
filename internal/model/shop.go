package model

import "fmt"

// ShopStatus reports whether the shop accepts orders.
type ShopStatus int

const (
	ShopClosed ShopStatus = 0
	ShopOpen   ShopStatus = 1
)

func (s ShopStatus) String() string {
	switch s {
	case ShopOpen:
		return "OPEN"
	case ShopClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Valid reports whether s is open or closed.
func (s ShopStatus) Valid() bool {
	return s == ShopOpen || s == ShopClosed
}

// ParseShopStatus accepts "0" or "1".
func ParseShopStatus(raw string) (ShopStatus, error) {
	switch raw {
	case "1":
		return ShopOpen, nil
	case "0":
		return ShopClosed, nil
	default:
		return ShopClosed, fmt.Errorf("unknown shop status %q", raw)
	}
}
