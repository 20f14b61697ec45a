// Command relay routes match traffic between participants and stores the
// host's snapshots.
//
// Environment:
//
//	PORT          listen port (default 8080)
//	DB_TYPE       "postgres" or anything else for the JSON file store
//	DATABASE_URL  PostgreSQL connection string
//	DB_FILE       JSON store path (default relay.json)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/netplay"
	"github.com/Garsondee/hexfront/internal/store"
)

const maxSnapshotBytes = 4 << 20

func main() {
	dbType := os.Getenv("DB_TYPE")
	dsn := os.Getenv("DATABASE_URL")
	if dbType == "postgres" && dsn == "" {
		dsn = "host=localhost user=hexfront password=hexfront dbname=hexfront sslmode=disable"
	}
	dbFile := os.Getenv("DB_FILE")
	if dbFile == "" {
		dbFile = "relay.json"
	}
	db, err := store.Open(dbType, dsn, dbFile)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()
	log.Printf("Persistence: %T", db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Relay listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, newRouter(netplay.NewHub(), db)))
}

// newRouter wires the hub to the store and exposes the HTTP surface.
func newRouter(hub *netplay.Hub, db store.Storage) *mux.Router {
	hub.OnSnapshot = func(matchID string, env netplay.Envelope) {
		var snap game.Snapshot
		if err := env.Decode(&snap); err != nil {
			log.Printf("relay: %v", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.SaveSnapshot(ctx, matchID, snap); err != nil {
			log.Printf("relay: %v", err)
		}
	}
	hub.OnJoin = func(matchID, peer string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := db.LoadSnapshot(ctx, matchID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("relay: %v", err)
			}
			return
		}
		env, err := netplay.NewEnvelope(netplay.TypeSnapshot, netplay.RelayPeer, snap)
		if err != nil {
			log.Printf("relay: %v", err)
			return
		}
		if err := hub.SendTo(matchID, peer, env); err != nil {
			log.Printf("relay: send stored snapshot to %s/%s: %v", matchID, peer, err)
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/matches", func(w http.ResponseWriter, r *http.Request) {
		ids, err := db.ListMatches(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"matches": ids})
	}).Methods(http.MethodGet)

	r.HandleFunc("/matches/{match}/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap, err := db.LoadSnapshot(r.Context(), mux.Vars(r)["match"])
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}).Methods(http.MethodGet)

	r.HandleFunc("/matches/{match}/snapshot", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		snap, err := game.DecodeSnapshot(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := snap.Restore(""); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := db.SaveSnapshot(r.Context(), mux.Vars(r)["match"], snap); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPut)

	r.HandleFunc("/matches/{match}/peers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"peers": hub.Peers(mux.Vars(r)["match"])})
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws/{match}", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, mux.Vars(r)["match"], r.URL.Query().Get("peer"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}
