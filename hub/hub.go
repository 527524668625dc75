package hub

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/merliot/sonar"
	"github.com/sirupsen/logrus"
)

//go:embed index.html
var fs embed.FS

const clockFormat = "15:04:05"

// Hub collects readings from rangers and hands each ranger its threshold in
// the reply.  Operators watch the rangers and set thresholds from the
// dashboard, which gets live updates over websocket.
type Hub struct {
	sonar.Thing
	*sonar.Server
	cfg     Config
	store   Store
	metrics *metrics
	tmpl    *template.Template
	log     logrus.FieldLogger
	now     func() time.Time
}

// deviceMsg is broadcast to dashboards whenever a device changes
type deviceMsg struct {
	sonar.ThingMsg
	Id        string
	Distance  float64
	Threshold float64
	Time      string
}

// thresholdMsg comes from a dashboard to set a device threshold
type thresholdMsg struct {
	sonar.ThingMsg
	Id        string
	Threshold float64
}

func New(cfg Config, store Store, log logrus.FieldLogger) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfs := sonar.NewCompositeFS()
	cfs.AddFS(fs)
	if cfg.Templates != "" {
		cfs.AddFS(os.DirFS(cfg.Templates))
	}
	tmpl, err := cfs.ParseFS("index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard: %w", err)
	}
	h := &Hub{
		Thing:   sonar.NewThing(cfg.Id, cfg.Model, cfg.Name),
		cfg:     cfg,
		store:   store,
		metrics: newMetrics(),
		tmpl:    tmpl,
		log:     log.WithField("hub", cfg.Id),
		now:     time.Now,
	}
	h.Server = sonar.NewServer("hub", h.viewerConnect, h.viewerDisconnect)
	h.Server.SetLogger(h.log)
	h.Server.BasicAuth(cfg.User, cfg.Passwd)
	h.Server.Handle("update", h.broadcast)
	h.Server.Handle("threshold", h.thresholdFromDashboard)
	return h, nil
}

func (h *Hub) viewerConnect(s sonar.Socketer) {
	if s.TestFlag(sonar.SocketFlagBcast) {
		h.metrics.viewers.Inc()
	}
}

func (h *Hub) viewerDisconnect(s sonar.Socketer) {
	if s.TestFlag(sonar.SocketFlagBcast) {
		h.metrics.viewers.Dec()
	}
}

// Routes returns the hub's HTTP handler
func (h *Hub) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/update", h.update).Methods(http.MethodPost)
	r.Handle("/api/devices", h.RequireAuth(http.HandlerFunc(h.devices))).Methods(http.MethodGet)
	r.Handle("/set_threshold/{id}", h.RequireAuth(http.HandlerFunc(h.setThreshold))).Methods(http.MethodPost)
	r.Handle("/ws", h.RequireAuth(http.HandlerFunc(h.ServeWebSocket)))
	r.Handle("/metrics", h.metrics.handler()).Methods(http.MethodGet)
	r.Handle("/", h.RequireAuth(http.HandlerFunc(h.dashboard))).Methods(http.MethodGet)

	logged := handlers.CombinedLoggingHandler(logWriter{h.log}, r)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(h.log))(logged)
}

// logWriter feeds access log lines to logrus at debug level
type logWriter struct {
	log logrus.FieldLogger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Debug(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type updateRequest struct {
	Id       string   `json:"id"`
	Distance *float64 `json:"distance"`
}

type updateReply struct {
	Threshold float64 `json:"threshold"`
}

func (h *Hub) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badUpdate(w, fmt.Sprintf("bad update: %s", err))
		return
	}
	if !sonar.ValidId(req.Id) {
		h.badUpdate(w, fmt.Sprintf("bad device id %q", req.Id))
		return
	}
	if req.Distance == nil {
		h.badUpdate(w, "missing distance")
		return
	}

	dev, err := h.store.Update(r.Context(), req.Id, *req.Distance, h.now())
	if err != nil {
		h.log.WithError(err).Errorf("Updating device %s", req.Id)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	h.metrics.observe(req.Id, dev)
	h.log.Debugf("Update %s distance %.2f threshold %.2f", req.Id, dev.Distance, dev.Threshold)
	h.inject(req.Id, dev)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updateReply{Threshold: dev.Threshold})
}

func (h *Hub) badUpdate(w http.ResponseWriter, msg string) {
	h.metrics.badUpdates.Inc()
	h.log.Warn(msg)
	http.Error(w, msg, http.StatusBadRequest)
}

// deviceView is a device as listed by /api/devices
type deviceView struct {
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
	Time      *string `json:"time"`
}

func clock(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Local().Format(clockFormat)
	return &s
}

func (h *Hub) devices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.store.Devices(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Listing devices")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	views := make(map[string]deviceView, len(devices))
	for id, dev := range devices {
		views[id] = deviceView{
			Distance:  dev.Distance,
			Threshold: dev.Threshold,
			Time:      clock(dev.Time),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (h *Hub) setThreshold(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if value := r.FormValue("threshold"); value != "" {
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsInf(threshold, 0) || math.IsNaN(threshold) {
			http.Error(w, fmt.Sprintf("bad threshold %q", value), http.StatusBadRequest)
			return
		}
		if err := h.applyThreshold(r.Context(), id, threshold); err != nil {
			h.log.WithError(err).Errorf("Setting threshold for %s", id)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyThreshold sets the threshold of a known device and tells the
// dashboards.  Unknown devices are ignored.
func (h *Hub) applyThreshold(ctx context.Context, id string, threshold float64) error {
	dev, ok, err := h.store.SetThreshold(ctx, id, threshold)
	if err != nil || !ok {
		return err
	}
	h.metrics.thresholdSets.Inc()
	h.metrics.threshold.WithLabelValues(id).Set(dev.Threshold)
	h.log.Infof("Threshold for %s set to %.2f", id, threshold)
	h.inject(id, dev)
	return nil
}

// inject an update packet for the device onto the bus
func (h *Hub) inject(id string, dev Device) {
	msg := deviceMsg{
		ThingMsg:  sonar.ThingMsg{Path: "update"},
		Id:        id,
		Distance:  dev.Distance,
		Threshold: dev.Threshold,
	}
	if t := clock(dev.Time); t != nil {
		msg.Time = *t
	}
	var pkt sonar.Packet
	if _, err := pkt.Marshal(&msg); err != nil {
		h.log.WithError(err).Error("Marshaling update")
		return
	}
	h.Inject(&pkt)
}

// broadcast relays device updates the hub itself injected; updates sent in
// by a viewer are dropped
func (h *Hub) broadcast(pkt *sonar.Packet) {
	if !pkt.From(h.Injector) {
		h.log.Warnf("Dropping update from viewer: %s", pkt)
		return
	}
	if err := pkt.Broadcast(); err != nil {
		h.log.WithError(err).Warn("Broadcast")
	}
}

func (h *Hub) thresholdFromDashboard(pkt *sonar.Packet) {
	var msg thresholdMsg
	if err := pkt.Unmarshal(&msg); err != nil {
		h.log.WithError(err).Warn("Bad threshold message")
		return
	}
	if err := h.applyThreshold(context.Background(), msg.Id, msg.Threshold); err != nil {
		h.log.WithError(err).Errorf("Setting threshold for %s", msg.Id)
	}
}

type dashboardDevice struct {
	Id        string
	Distance  float64
	Threshold float64
	Time      string
}

type dashboardData struct {
	Devices []dashboardDevice
	Presets []float64
}

func (h *Hub) dashboard(w http.ResponseWriter, r *http.Request) {
	devices, err := h.store.Devices(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Listing devices")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	data := dashboardData{Presets: h.cfg.Presets}
	for id, dev := range devices {
		d := dashboardDevice{Id: id, Distance: dev.Distance, Threshold: dev.Threshold, Time: "Never"}
		if t := clock(dev.Time); t != nil {
			d.Time = *t
		}
		data.Devices = append(data.Devices, d)
	}
	sort.Slice(data.Devices, func(i, j int) bool {
		return data.Devices[i].Id < data.Devices[j].Id
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		h.log.WithError(err).Error("Rendering dashboard")
	}
}

// Setup is a no-op; the store is ready when the hub is made
func (h *Hub) Setup(context.Context) error {
	return nil
}

// Run serves HTTP (or HTTPS with TLSHost) until ctx is done, then shuts the
// server down
func (h *Hub) Run(ctx context.Context) error {
	h.Server.Handler = h.Routes()
	h.Server.Addr = h.cfg.Addr

	errc := make(chan error, 1)
	go func() {
		if h.cfg.TLSHost != "" {
			h.log.Infof("Serving HTTPS for %s", h.cfg.TLSHost)
			errc <- h.ServeTLS(h.cfg.TLSHost)
		} else {
			h.log.Infof("Serving HTTP on %s", h.cfg.Addr)
			errc <- h.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
