package ops

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes the widget's local operational surface: Prometheus metrics
// and a health probe reporting channel connectivity.
type Server struct {
	listenAddr string
	connected  func() bool
	queueDepth func() int
	log        *logrus.Logger
}

func NewServer(listenAddr string, connected func() bool, queueDepth func() int, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{
		listenAddr: listenAddr,
		connected:  connected,
		queueDepth: queueDepth,
		log:        log,
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return router
}

// Run blocks serving the ops endpoint. An empty listen address disables it.
func (s *Server) Run() {
	if s.listenAddr == "" {
		return
	}

	s.log.WithField("listen_addr", s.listenAddr).Info("ops endpoint listening")
	if err := http.ListenAndServe(s.listenAddr, s.Router()); err != nil {
		s.log.WithError(err).Error("ops endpoint stopped")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Connected  bool `json:"connected"`
		QueueDepth int  `json:"queue_depth"`
	}{}
	if s.connected != nil {
		status.Connected = s.connected()
	}
	if s.queueDepth != nil {
		status.QueueDepth = s.queueDepth()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
