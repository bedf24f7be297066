package api

import (
	"encoding/json"
	"net/http"

	"github.com/matt-g-everett/ledlayers/stream"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

// Api serves the HTTP control surface of a renderer.
type Api struct {
	switcher stream.Switcher
	fadeTime float64
	logger   logxi.Logger
}

// NewApi creates an Api controlling switcher. Requests without a fade time use fadeTime.
func NewApi(switcher stream.Switcher, fadeTime float64, logger logxi.Logger) *Api {
	a := new(Api)
	a.switcher = switcher
	a.fadeTime = fadeTime
	a.logger = logger
	if a.logger == nil {
		a.logger = logxi.New("api")
	}
	return a
}

// Handler returns the routes of the API.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/advance", a.handleAdvance)
	mux.HandleFunc("/swap", a.handleSwap)
	mux.HandleFunc("/status", a.handleStatus)
	return mux
}

func (a *Api) handleAdvance(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cmd := stream.Command{Type: "advance"}
	if req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd.Type = "advance"
	}
	a.dispatch(w, cmd)
}

func (a *Api) handleSwap(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var cmd stream.Command
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.Type = "swap"
	a.dispatch(w, cmd)
}

func (a *Api) dispatch(w http.ResponseWriter, cmd stream.Command) {
	if err := stream.Dispatch(a.switcher, cmd, a.fadeTime); err != nil {
		a.logger.Warn("command failed", "type", cmd.Type, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.writeStatus(w)
}

func (a *Api) handleStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.writeStatus(w)
}

func (a *Api) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.switcher.Status()); err != nil {
		a.logger.Warn("writing status", "err", err)
	}
}

// Serve listens on addr until the server fails.
func (a *Api) Serve(addr string) error {
	a.logger.Info("listening", "addr", addr)
	return errors.Wrap(http.ListenAndServe(addr, a.Handler()), "serving api")
}
