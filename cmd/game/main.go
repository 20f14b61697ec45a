package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/hexfront/internal/board"
	"github.com/Garsondee/hexfront/internal/catalog"
	"github.com/Garsondee/hexfront/internal/game"
	"github.com/Garsondee/hexfront/internal/netplay"
)

func main() {
	var (
		scenario   = flag.String("scenario", "skirmish", "scenario name")
		catalogDir = flag.String("catalog", "", "catalog directory (default: embedded)")
		relay      = flag.String("relay", "", "relay base URL, e.g. ws://localhost:8080")
		match      = flag.String("match", "default", "match id on the relay")
		peer       = flag.String("peer", "", "participant to play as (default: first in rotation)")
		host       = flag.Bool("host", false, "act as the combat authority")
		hotSeat    = flag.Bool("hotseat", false, "play every human participant from this window")
		verbose    = flag.Bool("verbose", false, "journal every movement step")
	)
	flag.Parse()

	cat, err := loadCatalog(*catalogDir)
	if err != nil {
		log.Fatal(err)
	}
	sc, err := cat.Scenario(*scenario)
	if err != nil {
		log.Fatal(err)
	}
	opts := []game.MatchOption{game.WithVerbose(*verbose)}
	if *peer != "" {
		opts = append(opts, game.WithLocalPlayer(*peer))
	}
	m, err := sc.NewMatch(cat, opts...)
	if err != nil {
		log.Fatal(err)
	}

	b := board.New(m.Session, m.Journal)
	b.HotSeat = *hotSeat && *relay == ""

	if *relay != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := netplay.Dial(ctx, *relay, *match, m.Session.LocalID)
		cancel()
		if err != nil {
			log.Fatalf("connect to relay: %v", err)
		}
		defer client.Close()
		p := netplay.Attach(m.Session, client, *host)
		b.Net = p
		if *host {
			if err := p.Host().SendSnapshot(netplay.RelayPeer); err != nil {
				log.Printf("initial snapshot: %v", err)
			}
		}
		log.Printf("joined match %s as %s (host=%v)", *match, m.Session.LocalID, *host)
	}
	if *relay == "" || *host {
		m.Start()
	}

	w, h := b.Size()
	ebiten.SetWindowTitle("Hexfront - " + sc.Name)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(b); err != nil {
		log.Fatal(err)
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(dir)
}
