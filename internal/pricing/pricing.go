package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Calculator holds the two process-wide pricing constants: the most currency
// the user is willing to pay for one full unit of experience, and the
// experience value that counts as one full unit.
type Calculator struct {
	paymentLimit float64
	maxXP        float64
}

func NewCalculator(paymentLimit, maxXP float64) (*Calculator, error) {
	if paymentLimit <= 0 {
		return nil, fmt.Errorf("payment limit must be positive, got %v", paymentLimit)
	}
	if maxXP <= 0 {
		return nil, fmt.Errorf("max experience must be positive, got %v", maxXP)
	}
	return &Calculator{paymentLimit: paymentLimit, maxXP: maxXP}, nil
}

func (c *Calculator) PaymentLimit() float64 {
	return c.paymentLimit
}

func (c *Calculator) MaxXP() float64 {
	return c.maxXP
}

// AffordabilityThreshold returns the highest unit price still considered a
// bargain for an item yielding xp experience per unit.
func (c *Calculator) AffordabilityThreshold(xp float64) (float64, error) {
	if xp <= 0 {
		return 0, fmt.Errorf("experience per unit must be positive, got %v", xp)
	}
	return round2(c.paymentLimit / c.maxXP * xp), nil
}

// ProjectedTotalCost returns the cost of accumulating one full unit of
// experience buying at price per item.
func (c *Calculator) ProjectedTotalCost(price, xp float64) (float64, error) {
	if xp <= 0 {
		return 0, fmt.Errorf("experience per unit must be positive, got %v", xp)
	}
	return round2(price / xp * c.maxXP), nil
}

// UnitsNeeded returns how many items must be bought to reach one full unit
// of experience.
func (c *Calculator) UnitsNeeded(xp float64) (int, error) {
	if xp <= 0 {
		return 0, fmt.Errorf("experience per unit must be positive, got %v", xp)
	}
	return int(math.Ceil(c.maxXP / xp)), nil
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
