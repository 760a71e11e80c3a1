package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/icexin/gocraft-quests/quest"
)

type questView struct {
	Player    string `json:"player"`
	Collected int    `json:"collected"`
	Required  int    `json:"required"`
}

type xpView struct {
	Player string `json:"player"`
	XP     int    `json:"xp"`
}

// NewAdminHandler serves a read-only view of quest progress and player xp.
// Players are addressed by uuid or by login name.
func NewAdminHandler(tracker *quest.Tracker, store *Store) http.Handler {
	r := chi.NewRouter()
	r.Get("/quests", func(w http.ResponseWriter, req *http.Request) {
		views := []questView{}
		for _, e := range tracker.Snapshot() {
			views = append(views, questView{e.Player.String(), e.Collected, e.Required})
		}
		writeJSON(w, http.StatusOK, views)
	})
	r.Get("/quests/{player}", func(w http.ResponseWriter, req *http.Request) {
		player := parsePlayer(chi.URLParam(req, "player"))
		st, ok := tracker.Progress(player)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "player is not on a quest"})
			return
		}
		writeJSON(w, http.StatusOK, questView{player.String(), st.Collected, tracker.Config().DiamondsRequired})
	})
	r.Get("/players/{player}/xp", func(w http.ResponseWriter, req *http.Request) {
		player := parsePlayer(chi.URLParam(req, "player"))
		writeJSON(w, http.StatusOK, xpView{player.String(), store.XP(player)})
	})
	return r
}

func parsePlayer(s string) quest.PlayerID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return quest.OfflinePlayerID(s)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Print(err)
	}
}
