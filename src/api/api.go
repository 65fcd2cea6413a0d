package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rawthoughts/modfeed/src/api/config"
	"github.com/rawthoughts/modfeed/src/api/webserver"
	"github.com/rawthoughts/modfeed/src/data"
	"github.com/rawthoughts/modfeed/src/ledger"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/rawthoughts/modfeed/src/workflow"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(&types.Submission{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	rdb := data.MustRedis(cfg.RedisURL)

	st := store.New(db)
	wf, err := workflow.New(
		st,
		ledger.New(st),
		data.NewStreamNotifier(rdb),
		data.NewStreamPublisher(rdb),
	)
	if err != nil {
		log.Fatalf("workflow: %v", err)
	}

	router := webserver.New(cfg, st, wf, rdb)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("modfeed API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}
