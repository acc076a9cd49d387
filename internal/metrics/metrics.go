package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	friendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Friend request attempts by outcome",
		},
		[]string{"outcome"},
	)

	friendMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_mutations_total",
			Help: "Accept/decline/remove operations on the friend graph",
		},
		[]string{"op"},
	)

	presenceSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_saves_total",
			Help: "Library status saves by result",
		},
		[]string{"result"},
	)

	rosterEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_events_total",
			Help: "Presence change events seen by session trackers",
		},
		[]string{"applied"},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(friendRequestsTotal, friendMutationsTotal, presenceSavesTotal, rosterEventsTotal)
	})
}

func IncFriendRequest(outcome string) {
	Register()
	friendRequestsTotal.WithLabelValues(outcome).Inc()
}

func IncFriendMutation(op string) {
	Register()
	friendMutationsTotal.WithLabelValues(op).Inc()
}

func IncPresenceSave(result string) {
	Register()
	presenceSavesTotal.WithLabelValues(result).Inc()
}

func IncRosterEvent(applied bool) {
	Register()
	if applied {
		rosterEventsTotal.WithLabelValues("true").Inc()
	} else {
		rosterEventsTotal.WithLabelValues("false").Inc()
	}
}
