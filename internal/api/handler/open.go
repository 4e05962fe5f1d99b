package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/phobrla/openinsafari/internal/api/request"
	"github.com/phobrla/openinsafari/internal/api/response"
	"github.com/phobrla/openinsafari/internal/opener"
	"github.com/phobrla/openinsafari/internal/platform"
)

var (
	openDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_open_dispatches_total",
			Help: "Open-URL dispatches by result",
		},
		[]string{"result"},
	)

	openDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_open_duration_seconds",
			Help:    "Time spent waiting on the host launch command",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Open relays a validated URL to the host's launch action.
type Open struct {
	opener opener.Opener
}

func NewOpen(op opener.Opener) *Open {
	return &Open{opener: op}
}

func (h *Open) Post(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var body request.Open
	if err := request.Decode(w, r, &body); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := request.ValidateTargetURL(body.URL)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dispatchID := platform.NewDispatchID()
	outcome := h.opener.Open(r.Context(), target)
	openDuration.Observe(outcome.Elapsed.Seconds())

	if !outcome.Launched {
		openDispatches.WithLabelValues("failed").Inc()
		logger.Error().
			Str("dispatch_id", dispatchID).
			Str("url", target).
			Str("detail", outcome.Detail).
			Dur("elapsed", outcome.Elapsed).
			Msg("open failed")
		response.WriteError(w, http.StatusBadGateway, outcome.Detail)
		return
	}

	openDispatches.WithLabelValues("launched").Inc()
	logger.Info().
		Str("dispatch_id", dispatchID).
		Str("url", target).
		Dur("elapsed", outcome.Elapsed).
		Msg("opened")

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"message":     outcome.Detail,
		"dispatch_id": dispatchID,
	})
}
