package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icexin/gocraft-quests/quest"
)

func main() {
	opts, err := LoadOptions(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts Options) error {
	cfg, err := LoadQuestConfig(opts.QuestConfig)
	if err != nil {
		return err
	}
	store, err := NewStore(opts.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	l, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return err
	}

	server := NewServer()
	playerService := NewPlayerService(server)
	chat := NewChat(server, playerService)
	tracker := quest.NewTracker(cfg, chat, NewXPRewards(store, server, playerService))
	log.Printf("quest plugin enabled: collect %d diamonds for %d xp", cfg.DiamondsRequired, cfg.RewardXP)
	defer log.Print("quest plugin disabled")

	blockService := NewBlockService(server, store, playerService, tracker)
	commandService := NewCommandService(playerService, chat, quest.NewCommand(tracker))
	server.RegisterService("Block", blockService)
	server.RegisterService("Player", playerService)
	server.RegisterService("Command", commandService)

	var admin *http.Server
	if opts.HTTP != "" {
		admin = &http.Server{
			Addr:              opts.HTTP,
			Handler:           NewAdminHandler(tracker, store),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Print(err)
			}
		}()
		log.Printf("admin http on %s", opts.HTTP)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.Printf("listening on %s", l.Addr())
	err = server.Serve(l)
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := admin.Shutdown(shutdownCtx); err != nil {
			log.Print(err)
		}
	}
	return err
}
