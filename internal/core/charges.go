package core

import "time"

// TotalCharges sums a client's whole charge history.
func TotalCharges(client *Client) Money {
	var total Money
	for _, ch := range client.Charges {
		total = total.Add(ch.Amount)
	}
	return total
}

// TotalByType folds charges into per-service-type totals.
func TotalByType(charges []*Charge) map[ServiceType]Money {
	totals := make(map[ServiceType]Money)
	for _, ch := range charges {
		totals[ch.ServiceType] = totals[ch.ServiceType].Add(ch.Amount)
	}
	return totals
}

// TotalInRange sums charges dated within [from, to], both ends
// inclusive. The range is interpreted at day granularity: a charge
// counts when its calendar day falls between from's day and to's day,
// regardless of time of day.
func TotalInRange(charges []*Charge, from, to time.Time) Money {
	fromDay := StartOfDay(from)
	toDay := StartOfDay(to)
	var total Money
	for _, ch := range charges {
		day := StartOfDay(ch.Date)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		total = total.Add(ch.Amount)
	}
	return total
}

// TotalForMonth sums charges landing in the given month and year.
func TotalForMonth(charges []*Charge, month time.Month, year int) Money {
	var total Money
	for _, ch := range charges {
		if ch.Date.Year() == year && ch.Date.Month() == month {
			total = total.Add(ch.Amount)
		}
	}
	return total
}

// CategorizeByType groups charges by service type, preserving per-type
// insertion order.
func CategorizeByType(charges []*Charge) map[ServiceType][]*Charge {
	groups := make(map[ServiceType][]*Charge)
	for _, ch := range charges {
		groups[ch.ServiceType] = append(groups[ch.ServiceType], ch)
	}
	return groups
}

// IsOverdue flags charges dated before the start of today. Payment
// status beyond this flag is not modeled by the engine.
func IsOverdue(charge *Charge, today time.Time) bool {
	return charge.Date.Before(StartOfDay(today))
}

// PopularServices counts how often each service type was billed across
// clients.
func PopularServices(clients []*Client) map[ServiceType]int {
	counts := make(map[ServiceType]int)
	for _, c := range clients {
		for _, ch := range c.Charges {
			counts[ch.ServiceType]++
		}
	}
	return counts
}
