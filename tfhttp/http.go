package tfhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/log"
	tfaccessory "github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/door"
	"github.com/cloudkucooland/pidoor/platform"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Platform is the primary handle
type Platform struct {
	Running bool
	srv     *http.Server
}

// Startup is called by the platform management to get things running
func (h *Platform) Startup(c *config.Config) platform.Control {
	if c.HTTPAddress == "" {
		log.Info.Println("HTTPAddress unset, control channel disabled")
		return h
	}

	h.srv = &http.Server{
		Addr:         c.HTTPAddress,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      Router(),
	}

	go func() {
		log.Info.Printf("starting up HTTP control channel on %s", c.HTTPAddress)
		if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Info.Print(err)
		}
	}()

	h.Running = true
	return h
}

// Router builds the control channel routes
func Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog)
	r.HandleFunc("/", homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/locks", locksHandler).Methods(http.MethodGet)
	r.HandleFunc("/lock/{name}", lockHandler).Methods(http.MethodGet)
	r.HandleFunc("/lock/{name}/{verb:unlock|lock}", setHandler).Methods(http.MethodPost)
	return r
}

// Shutdown is called by the platform management to shut things down
func (h *Platform) Shutdown() platform.Control {
	if h.srv == nil {
		return h
	}
	log.Info.Print("shutting down HTTP control channel")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		log.Info.Print(err)
	}
	h.Running = false
	return h
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	fmt.Fprint(w, `{ "status": "OK" }`)
}

func locksHandler(w http.ResponseWriter, r *http.Request) {
	ls := door.Locks()
	out := make([]door.Status, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Status())
	}
	writeJSON(w, http.StatusOK, out)
}

func lockHandler(w http.ResponseWriter, r *http.Request) {
	l, ok := door.GetLock(mux.Vars(r)["name"])
	if !ok {
		http.Error(w, `{ "status": "unknown lock" }`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, l.Status())
}

func setHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, ok := door.GetLock(vars["name"])
	if !ok {
		http.Error(w, `{ "status": "unknown lock" }`, http.StatusNotFound)
		return
	}

	target := characteristic.LockTargetStateSecured
	if vars["verb"] == "unlock" {
		target = characteristic.LockTargetStateUnsecured
	}
	if err := l.SetTargetState(r.Context(), target); err != nil {
		log.Info.Println(err.Error())
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "relay failed", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, l.Status())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info.Print(err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: res, code: http.StatusOK}
		next.ServeHTTP(rec, req)
		logrus.WithFields(logrus.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"remote":   req.RemoteAddr,
			"status":   rec.code,
			"duration": time.Since(start),
		}).Info("control channel request")
	})
}

// AddAccessory - do not use, just satisfies the Platform interface
func (h *Platform) AddAccessory(a *tfaccessory.TFAccessory) error {
	return nil
}

// GetAccessory - do not use, just satisfies the Platform interface
func (h *Platform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	return nil, false
}

// Background - just satisfies the Platform interface
func (h *Platform) Background() {
	// nothing to do
}
