// Package bonus computes location-weighted bonus and revenue figures from
// remote and on-site hours.
//
// All arithmetic is exact; callers round with Round only when presenting.
package bonus

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places used when presenting amounts.
const MoneyPlaces = 2

// Rates is the financial configuration of a project. Unset rates count as 0.
type Rates struct {
	HourlyRate       decimal.NullDecimal
	OnsiteHourlyRate decimal.NullDecimal
	BonusRate        decimal.Decimal
}

// Hours splits worked hours by location.
type Hours struct {
	Remote decimal.Decimal `json:"remote_hours"`
	Onsite decimal.Decimal `json:"onsite_hours"`
}

// Total returns remote plus on-site hours.
func (h Hours) Total() decimal.Decimal {
	return h.Remote.Add(h.Onsite)
}

// Add returns the element-wise sum of h and o.
func (h Hours) Add(o Hours) Hours {
	return Hours{Remote: h.Remote.Add(o.Remote), Onsite: h.Onsite.Add(o.Onsite)}
}

// IsZero reports whether no hours were worked.
func (h Hours) IsZero() bool {
	return h.Remote.IsZero() && h.Onsite.IsZero()
}

// Breakdown is the bonus split by location.
type Breakdown struct {
	RemoteBonus decimal.Decimal `json:"remote_bonus"`
	OnsiteBonus decimal.Decimal `json:"onsite_bonus"`
	TotalBonus  decimal.Decimal `json:"total_bonus"`
}

// Add returns the element-wise sum of b and o.
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		RemoteBonus: b.RemoteBonus.Add(o.RemoteBonus),
		OnsiteBonus: b.OnsiteBonus.Add(o.OnsiteBonus),
		TotalBonus:  b.TotalBonus.Add(o.TotalBonus),
	}
}

// Rounded returns b with every amount rounded to MoneyPlaces.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		RemoteBonus: Round(b.RemoteBonus),
		OnsiteBonus: Round(b.OnsiteBonus),
		TotalBonus:  Round(b.TotalBonus),
	}
}

// Calculate returns the bonus for the given hours:
//
//	remote = remote hours × hourly rate × bonus rate
//	onsite = on-site hours × (on-site rate, else hourly rate) × bonus rate
func Calculate(remoteHours, onsiteHours decimal.Decimal, r Rates) Breakdown {
	remote := remoteHours.Mul(r.remoteRate()).Mul(r.BonusRate)
	onsite := onsiteHours.Mul(r.onsiteRate()).Mul(r.BonusRate)
	return Breakdown{
		RemoteBonus: remote,
		OnsiteBonus: onsite,
		TotalBonus:  remote.Add(onsite),
	}
}

// Revenue returns the billable amount for the given hours, i.e. Calculate
// without the bonus fraction.
func Revenue(remoteHours, onsiteHours decimal.Decimal, r Rates) decimal.Decimal {
	return remoteHours.Mul(r.remoteRate()).Add(onsiteHours.Mul(r.onsiteRate()))
}

// ForHours is Calculate applied to h.
func ForHours(h Hours, r Rates) Breakdown {
	return Calculate(h.Remote, h.Onsite, r)
}

// RevenueForHours is Revenue applied to h.
func RevenueForHours(h Hours, r Rates) decimal.Decimal {
	return Revenue(h.Remote, h.Onsite, r)
}

// Round rounds d half away from zero to MoneyPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func (r Rates) remoteRate() decimal.Decimal {
	if r.HourlyRate.Valid {
		return r.HourlyRate.Decimal
	}
	return decimal.Zero
}

func (r Rates) onsiteRate() decimal.Decimal {
	if r.OnsiteHourlyRate.Valid {
		return r.OnsiteHourlyRate.Decimal
	}
	return r.remoteRate()
}
