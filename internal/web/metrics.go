package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// contactSubmissions counts finished contact submits by outcome:
// invalid, delivered, fallback or busy.
var contactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portfolio_contact_submissions_total",
	Help: "Contact form submissions by outcome.",
}, []string{"outcome"})
