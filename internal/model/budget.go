package model

// Budget is a per-department spending allocation for a fiscal period.
type Budget struct {
	ID         string  `json:"id"`
	Department string  `json:"department"`
	Period     string  `json:"period"`
	Allocated  float64 `json:"allocated"`
	Spent      float64 `json:"spent"`
	Committed  float64 `json:"committed"`
}

// Remaining returns the uncommitted balance.
func (b Budget) Remaining() float64 {
	return b.Allocated - b.Spent - b.Committed
}

// Utilization returns spent-plus-committed as a fraction of the
// allocation, or 0 when nothing is allocated.
func (b Budget) Utilization() float64 {
	if b.Allocated == 0 {
		return 0
	}
	return (b.Spent + b.Committed) / b.Allocated
}
