package services

import (
	"sort"
	"time"

	"furfolio/internal/core"
)

// ClientVisits pairs a client with how many charges they have on
// record, for the "most frequent customers" dashboard section.
type ClientVisits struct {
	Client *core.Client
	Visits int
}

// Metrics is the dashboard snapshot over all clients.
type Metrics struct {
	Appointments    core.AppointmentStats
	TopClients      []ClientVisits
	PopularServices map[core.ServiceType]int
}

// BuildMetrics derives the dashboard numbers from the client list. Pure
// function; revenue figures come from RevenueService separately.
func BuildMetrics(clients []*core.Client, now time.Time, topN int) Metrics {
	if topN <= 0 {
		topN = 3
	}

	visits := make([]ClientVisits, 0, len(clients))
	for _, c := range clients {
		visits = append(visits, ClientVisits{Client: c, Visits: len(c.Charges)})
	}
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].Visits > visits[j].Visits
	})
	if len(visits) > topN {
		visits = visits[:topN]
	}

	return Metrics{
		Appointments:    core.CountAppointments(clients, now),
		TopClients:      visits,
		PopularServices: core.PopularServices(clients),
	}
}
