package metrics

import "github.com/prometheus/client_golang/prometheus"

// Translation outcome label values.
const (
	OutcomeFormed = "formed"
	OutcomeEmpty  = "empty"
)

var (
	// TranslationsTotal counts query translations by terminal outcome.
	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbsearch",
			Name:      "translations_total",
			Help:      "Question translations by outcome (formed vs no meaningful word)",
		},
		[]string{"outcome"},
	)

	// FormedQueriesTotal counts structured queries produced by translation.
	FormedQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kbsearch",
			Name:      "formed_queries_total",
			Help:      "Total structured queries formed from questions",
		},
	)

	// QueryExecFailuresTotal counts per-query backend execution failures.
	QueryExecFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kbsearch",
			Name:      "query_exec_failures_total",
			Help:      "Backend execution failures absorbed into partial results",
		},
	)
)

// RegisterTranslationMetrics registers domain metrics with the default
// registry. Called explicitly from the composition root (no init()).
func RegisterTranslationMetrics() {
	prometheus.MustRegister(TranslationsTotal)
	prometheus.MustRegister(FormedQueriesTotal)
	prometheus.MustRegister(QueryExecFailuresTotal)
}
