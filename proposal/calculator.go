package proposal

import (
	"html/template"
	"math"
	"strconv"
	"strings"
)

// Calculator models the impact slider. Amount is the only state; every
// other figure derives from it.
type Calculator struct {
	costPerScholarship float64
	costPerServiceHour float64
	min                float64
	max                float64
	step               float64
	amount             float64
}

// NewCalculator resolves cfg against defaults and starts at the minimum.
// A nil cfg uses defaults throughout.
func NewCalculator(cfg *CalculatorConfig) *Calculator {
	c := &Calculator{
		costPerScholarship: DefaultCostPerScholarship,
		costPerServiceHour: DefaultCostPerServiceHour,
		min:                DefaultMinDonation,
		max:                DefaultMaxDonation,
		step:               DefaultDonationStep,
	}
	if cfg != nil {
		c.costPerScholarship = positiveOr(cfg.CostPerScholarship, DefaultCostPerScholarship)
		c.costPerServiceHour = positiveOr(cfg.CostPerServiceHour, DefaultCostPerServiceHour)
		if cfg.MinDonation != nil && !math.IsNaN(*cfg.MinDonation) {
			c.min = *cfg.MinDonation
		}
		if cfg.MaxDonation != nil && !math.IsNaN(*cfg.MaxDonation) {
			c.max = *cfg.MaxDonation
		}
		if cfg.Step != nil {
			c.step = positiveOr(*cfg.Step, DefaultDonationStep)
		}
	}
	if c.max < c.min {
		c.max = c.min
	}
	c.amount = c.min
	return c
}

// SetAmount moves the slider, clamping into range. The amount is kept as
// given; step granularity belongs to the range control. It returns the
// accepted amount.
func (c *Calculator) SetAmount(value float64) float64 {
	switch {
	case math.IsNaN(value):
	case value <= c.min:
		c.amount = c.min
	case value >= c.max:
		c.amount = c.max
	default:
		c.amount = value
	}
	return c.amount
}

func (c *Calculator) Amount() float64 { return c.amount }

func (c *Calculator) Min() float64 { return c.min }

func (c *Calculator) Max() float64 { return c.max }

func (c *Calculator) Step() float64 { return c.step }

func (c *Calculator) CostPerScholarship() float64 { return c.costPerScholarship }

func (c *Calculator) CostPerServiceHour() float64 { return c.costPerServiceHour }

// Scholarships is the number of whole scholarships the amount funds.
func (c *Calculator) Scholarships() int64 {
	return int64(math.Floor(c.amount / c.costPerScholarship))
}

// ServiceHours is the number of whole service hours the amount funds.
func (c *Calculator) ServiceHours() int64 {
	return int64(math.Floor(c.amount / c.costPerServiceHour))
}

// FillPercentage is the slider position in [0, 100]; 0 for a degenerate range.
func (c *Calculator) FillPercentage() float64 {
	if c.max <= c.min {
		return 0
	}
	return (c.amount - c.min) / (c.max - c.min) * 100
}

// CalculatorView is a render snapshot of a calculator.
type CalculatorView struct {
	PrimaryColor       string
	Accent             template.CSS
	Amount             float64
	Min                float64
	Max                float64
	Step               float64
	CostPerScholarship float64
	CostPerServiceHour float64
	Scholarships       int64
	ServiceHours       int64
	Fill               float64
}

// View captures the current state with the accent color.
func (c *Calculator) View(primaryColor string) CalculatorView {
	primaryColor = cssColor(primaryColor, DefaultPrimaryColor)
	return CalculatorView{
		PrimaryColor:       primaryColor,
		Accent:             template.CSS(primaryColor),
		Amount:             c.amount,
		Min:                c.min,
		Max:                c.max,
		Step:               c.step,
		CostPerScholarship: c.costPerScholarship,
		CostPerServiceHour: c.costPerServiceHour,
		Scholarships:       c.Scholarships(),
		ServiceHours:       c.ServiceHours(),
		Fill:               c.FillPercentage(),
	}
}

func positiveOr(value, fallback float64) float64 {
	if value > 0 && !math.IsInf(value, 0) {
		return value
	}
	return fallback
}

// FormatNumber renders v with comma thousands separators and at most three
// fraction digits.
func FormatNumber(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	raw := strconv.FormatFloat(v, 'f', 3, 64)
	whole, frac, _ := strings.Cut(raw, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg && (whole != "0" || frac != "") {
		b.WriteByte('-')
	}
	groupDigits(&b, whole)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatCount renders a whole count with comma thousands separators.
func FormatCount(n int64) string {
	var b strings.Builder
	digits := strconv.FormatInt(n, 10)
	if n < 0 {
		b.WriteByte('-')
		digits = digits[1:]
	}
	groupDigits(&b, digits)
	return b.String()
}

func groupDigits(b *strings.Builder, whole string) {
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
}

// FormatPlain renders v without separators, as used in data attributes.
func FormatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
