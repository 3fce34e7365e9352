package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/guslan/chip8"
	"github.com/rs/cors"
)

const maxUploadSize = chip8.MaxProgramSize + 1

type Server struct {
	console *chip8.Console
	config  ServerConfig
	handler http.Handler

	clients map[*client]struct{}
	last    []byte
	wsMutex sync.RWMutex
}

type ServerConfig struct {
	Theme     chip8.Theme
	StaticDir string
	// StatsAddr enables the runtime stats server when not empty
	StatsAddr string
	// StartStopped waits for /start before running the program
	StartStopped bool

	Console []chip8.ConsoleConfigCb
}
type ServerConfigCb func(config *ServerConfig)

// NewServer creates a server running program. A nil program waits for an upload on /load.
func NewServer(program []byte, configs ...ServerConfigCb) (*Server, error) {
	config := ServerConfig{
		Theme:     chip8.DefaultTheme,
		StaticDir: "./static",
	}
	for _, cb := range configs {
		cb(&config)
	}

	server := &Server{
		config:  config,
		clients: make(map[*client]struct{}),
	}

	console, err := chip8.NewConsole(program, append(config.Console, func(config *chip8.ConsoleConfig) {
		config.Display = server
	})...)
	if err != nil {
		return nil, err
	}
	server.console = console
	if config.StartStopped {
		console.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(config.StaticDir)))
	mux.HandleFunc("/start", server.handleStart)
	mux.HandleFunc("/stop", server.handleStop)
	mux.HandleFunc("/reset", server.handleReset)
	mux.HandleFunc("/load", server.handleLoad)
	mux.HandleFunc("/speed", server.handleSpeed)
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/display", server.handleDisplay)

	server.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"Content-Type"},
	}).Handler(noCache(mux))

	return server, nil
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func (server *Server) Console() *chip8.Console {
	return server.console
}

func (server *Server) Handler() http.Handler {
	return server.handler
}

// Listen serves on port and runs the console until ctx is done
func (server *Server) Listen(ctx context.Context, port int) error {
	if err := server.console.Boot(); err != nil {
		return err
	}

	if server.config.StatsAddr != "" {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(server.config.StatsAddr))
			mgr := statsview.New()
			mgr.Start()
		}()
		slog.Info("Serving runtime stats", slog.String("url", "http://"+server.config.StatsAddr+"/debug/statsview"))
	}

	go server.Loop(ctx)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening on port", slog.Int("port", port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Loop runs console frames until ctx is done.
// Unlike Console.Run it survives halts and faults so the program can be reset or replaced.
func (server *Server) Loop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / chip8.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			_, err := server.console.RunFrame()
			if err != nil && !errors.Is(err, chip8.ErrNoProgram) {
				slog.Error("Program faulted, stopping", slog.Any("error", err))
				server.console.Stop()
			}
		}
	}
}

func (server *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	slog.Info("Starting")
	server.console.Start()
	server.writeStatus(w)
}

func (server *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	slog.Info("Stopping")
	server.console.Stop()
	server.writeStatus(w)
}

func (server *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	slog.Info("Resetting")
	if err := server.console.Reset(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	server.writeStatus(w)
}

// handleLoad replaces the program with the request body
func (server *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "use POST", http.StatusMethodNotAllowed)
		return
	}

	program, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.console.Load(program); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, chip8.ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}
	server.writeStatus(w)
}

func (server *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var speed uint
	if _, err := fmt.Sscan(r.URL.Query().Get("hz"), &speed); err != nil {
		http.Error(w, "hz must be a positive number", http.StatusBadRequest)
		return
	}

	server.console.SetSpeedInHz(speed)
	slog.Info("Speed changed", slog.Uint64("hz", uint64(server.console.SpeedInHz())))
	server.writeStatus(w)
}

func (server *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	server.writeStatus(w)
}

type Status struct {
	HasProgram bool   `json:"hasProgram"`
	Running    bool   `json:"running"`
	Halted     bool   `json:"halted"`
	Speed      uint   `json:"speed"`
	Cycles     uint   `json:"cycles"`
	Frames     uint   `json:"frames"`
	Error      string `json:"error,omitempty"`
}

func (server *Server) Status() Status {
	snap := server.console.Snapshot()
	status := Status{
		HasProgram: snap.HasProgram,
		Running:    snap.Running,
		Halted:     snap.Halted,
		Speed:      snap.Speed,
		Cycles:     snap.Cycles,
		Frames:     snap.Frames,
	}
	if snap.LastError != nil {
		status.Error = snap.LastError.Error()
	}

	return status
}

func (server *Server) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.Status()); err != nil {
		slog.Warn("Error writing status", slog.Any("error", err))
	}
}
