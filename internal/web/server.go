package web

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/config"
	"github.com/peterkuimelis/swapduel/internal/match"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Points  int    `json:"points"`
	Rarity  string `json:"rarity"`
	Booster bool   `json:"booster"`
	ArtPath string `json:"artPath,omitempty"`
}

// MatchInfo is the JSON representation of a live match for /api/matches/{id}.
type MatchInfo struct {
	ID      string             `json:"id"`
	Phase   string             `json:"phase"`
	Round   int                `json:"round"`
	Outcome string             `json:"outcome"`
	TotalA  int                `json:"total_a"`
	TotalB  int                `json:"total_b"`
	State   *swapnet.StateView `json:"state"`
}

// Server is the swapduel web UI server.
type Server struct {
	catalog  *catalog.Catalog
	settings config.Config
	artDir   string
	logger   *log.Logger

	mu      sync.Mutex
	matches map[string]*match.Match
}

// NewServer creates a new web server. A nil catalog means the default one.
func NewServer(cat *catalog.Catalog, settings config.Config, artDir string) *Server {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Server{
		catalog:  cat,
		settings: settings,
		artDir:   artDir,
		logger:   log.New(os.Stdout, "[web] ", log.LstdFlags),
		matches:  make(map[string]*match.Match),
	}
}

// SetLogger replaces the process logger.
func (s *Server) SetLogger(l *log.Logger) {
	s.logger = l
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	staticFS, _ := fs.Sub(staticFiles, "static")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	if s.artDir != "" {
		r.Handle("/art/*", http.StripPrefix("/art/", http.FileServer(http.Dir(s.artDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", s.handleCards)
		r.Get("/matches/{id}", s.handleMatch)
	})

	r.Get("/ws/practice", s.handlePractice)
	r.Get("/ws/join", s.handleJoin)
	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var cards []CardInfo
	for _, c := range s.catalog.Cards() {
		cards = append(cards, CardInfo{
			Name:    c.Name,
			Label:   c.Label,
			Points:  c.Points,
			Rarity:  c.Rarity.String(),
			Booster: c.BoosterEligible,
			ArtPath: artPath(c.ArtworkRef),
		})
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	m, ok := s.matches[id]
	s.mu.Unlock()
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such match"})
		return
	}

	seat := match.PlayerA
	if q := r.URL.Query().Get("seat"); q != "" {
		p, err := match.ParsePlayer(q)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		seat = p
	}

	snap := m.Snapshot()
	s.writeJSON(w, http.StatusOK, MatchInfo{
		ID:      snap.ID,
		Phase:   snap.Phase.String(),
		Round:   snap.Round,
		Outcome: snap.Outcome.String(),
		TotalA:  snap.Totals[match.PlayerA],
		TotalB:  snap.Totals[match.PlayerB],
		State:   swapnet.BuildStateView(snap, seat),
	})
}

func (s *Server) track(m *match.Match) {
	s.mu.Lock()
	s.matches[m.ID()] = m
	s.mu.Unlock()
}

func (s *Server) forget(m *match.Match) {
	s.mu.Lock()
	delete(s.matches, m.ID())
	s.mu.Unlock()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

// artPath maps a card's artwork reference to a URL the page can load.
// Absolute URLs pass through; anything else is served from /art/.
func artPath(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	default:
		return "/art/" + strings.TrimPrefix(ref, "card_art/")
	}
}
