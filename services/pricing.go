package services

import (
	"strings"

	"reservation-backend/models"

	"github.com/shopspring/decimal"
)

// LinePrice is the priced form of one line item.
type LinePrice struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
	Currency  string
}

// PricingCalculator prices line items. Amounts are unit price times quantity
// except for package lines, which are reconciled to their components.
type PricingCalculator struct {
	DefaultCurrency string
}

func NewPricingCalculator(defaultCurrency string) *PricingCalculator {
	return &PricingCalculator{DefaultCurrency: defaultCurrency}
}

func (p *PricingCalculator) line(unit decimal.Decimal, qty int, currency string) LinePrice {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = p.DefaultCurrency
	}
	return LinePrice{
		UnitPrice: unit,
		Quantity:  qty,
		Amount:    unit.Mul(decimal.NewFromInt(int64(qty))),
		Currency:  currency,
	}
}

// Accommodation is priced per room-night; occupants do not change the price.
func (p *PricingCalculator) Accommodation(rt models.RoomType, nights int) LinePrice {
	return p.line(rt.BaseRate, nights, rt.Currency)
}

func (p *PricingCalculator) Activity(a models.Activity, participants int) LinePrice {
	return p.line(a.BasePrice, participants, a.Currency)
}

// PackageProvisional is the flat package price used until components are priced.
func (p *PricingCalculator) PackageProvisional(pkg models.Package, participants int) LinePrice {
	return p.line(pkg.BasePrice, participants, pkg.Currency)
}

// PackageHotel prices one stay of a package: rate times nights, per participant.
func (p *PricingCalculator) PackageHotel(h models.PackageHotel, participants int) LinePrice {
	perPerson := h.RoomType.BaseRate.Mul(decimal.NewFromInt(int64(h.Nights)))
	return p.line(perPerson, participants, h.RoomType.Currency)
}

func (p *PricingCalculator) PackageActivity(a models.PackageActivity, participants int) LinePrice {
	return p.line(a.Activity.BasePrice, participants, a.Activity.Currency)
}

func (p *PricingCalculator) Shuttle(route models.ShuttleRoute, passengers int) LinePrice {
	return p.line(route.BasePrice, passengers, route.Currency)
}

// Reconcile replaces the provisional package amount with the sum of its
// components. A package without components keeps its provisional amount.
func (p *PricingCalculator) Reconcile(provisional LinePrice, components []LinePrice) LinePrice {
	if len(components) == 0 {
		return provisional
	}
	out := provisional
	out.Amount = SumAmounts(components)
	return out
}

// PackageComponents prices every component of a placed package.
func (p *PricingCalculator) PackageComponents(target PackageTarget, participants int) (hotels, activities []LinePrice) {
	for _, plan := range target.Hotels {
		hotels = append(hotels, p.PackageHotel(plan.Component, participants))
	}
	for _, plan := range target.Activities {
		activities = append(activities, p.PackageActivity(plan.Component, participants))
	}
	return hotels, activities
}

// Estimate prices a checked request the way the booking would end up.
func (p *PricingCalculator) Estimate(res CheckResult, req ReservationRequest) LinePrice {
	switch {
	case res.Accommodation != nil:
		return p.Accommodation(res.Accommodation.RoomType, res.Accommodation.Nights)
	case res.Activity != nil:
		return p.Activity(res.Activity.Activity, req.Activity.Participants)
	case res.Package != nil:
		n := req.Package.Participants
		hotels, activities := p.PackageComponents(*res.Package, n)
		return p.Reconcile(p.PackageProvisional(res.Package.Package, n), append(hotels, activities...))
	case res.Shuttle != nil:
		return p.Shuttle(res.Shuttle.Route, req.Shuttle.Passengers)
	}
	return LinePrice{Amount: decimal.Zero, Currency: p.DefaultCurrency}
}

func SumAmounts(lines []LinePrice) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
