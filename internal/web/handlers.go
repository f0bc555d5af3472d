package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *zap.Logger
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, status int, gs app.GameState, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(h.renderBoard(gs, errMsg))
}

// fail maps service errors to status codes.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrStepOutOfRange):
		http.Error(w, "step out of range", http.StatusBadRequest)
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// formInt reads an integer form field.
func formInt(r *http.Request, key string) (int, error) {
	if err := r.ParseForm(); err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(r.Form.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.game, newBoardView(*gs, "")))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	cell, err := formInt(r, "cell")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gs, err := h.svc.Play(r.Context(), chi.URLParam(r, "id"), cell)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	step, err := formInt(r, "step")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gs, err := h.svc.Jump(r.Context(), chi.URLParam(r, "id"), step)
	if errors.Is(err, domain.ErrStepOutOfRange) && gs != nil {
		h.writeBoard(w, http.StatusBadRequest, *gs, "No such move")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeBoard(w, http.StatusOK, *gs, "")
}

type moveJSON struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type stateJSON struct {
	ID      string         `json:"id"`
	Step    int            `json:"step"`
	Board   domain.Board   `json:"board"`
	Next    domain.Cell    `json:"next"`
	Status  string         `json:"status"`
	Outcome domain.Outcome `json:"outcome"`
	Winner  domain.Cell    `json:"winner,omitempty"`
	Line    []int          `json:"line,omitempty"`
	Moves   []moveJSON     `json:"moves"`
}

func newStateJSON(gs app.GameState) stateJSON {
	s := gs.Session
	result := domain.Evaluate(s.Active())
	out := stateJSON{
		ID:      gs.ID,
		Step:    s.Step,
		Board:   s.Active(),
		Next:    s.Next(),
		Status:  domain.Status(s),
		Outcome: domain.OutcomeOf(s),
		Moves:   []moveJSON{},
	}
	if result.Decided() {
		out.Winner = result.Winner
		out.Line = result.Line[:]
	}
	for _, l := range domain.Labels(s) {
		out.Moves = append(out.Moves, moveJSON{Step: l.Step, Label: l.Text, Current: l.Current})
	}
	return out
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newStateJSON(*gs))
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer unsub()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent emits one SSE event; multi-line payloads get one data field per line.
func writeEvent(w io.Writer, name string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
