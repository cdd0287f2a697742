package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Counters are created at package load so services can increment them
// whether or not a registry was wired (unit tests exercise services without
// one). Register attaches them to a registry at startup.
var (
	CodesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_codes_issued_total",
		Help: "Total number of authorization codes issued.",
	})
	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of access tokens issued.",
	})
	RedemptionsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_redemptions_rejected_total",
		Help: "Total number of rejected code redemptions (absent, expired, reused, or verifier mismatch).",
	})
)

// Register registers the custom metrics with the given registerer. It should
// be called once at application startup.
func Register(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		CodesIssuedTotal,
		TokensIssuedTotal,
		RedemptionsRejectedTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
}
