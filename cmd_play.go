// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/spezifisch/persistctl/mpvplayer"
	"github.com/spezifisch/persistctl/persist"
	"github.com/spezifisch/persistctl/remote"
	"github.com/spezifisch/persistctl/storage"
)

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <file-or-url>...",
		Short: "Play media with remembered player controls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(contextOf(cmd), args)
		},
	}
}

func (a *app) play(parent context.Context, uris []string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	store, err := storage.Open(storageConfig(a.v))
	if err != nil {
		// the player still works, it just forgets
		a.logger.PrintError("storage", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
		store = storage.Instrument(store, storage.NewMetrics(reg))
	}

	if addr := a.v.GetString("metrics.addr"); addr != "" {
		srv := serveMetrics(addr, reg, a)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	rates, err := playerRates(a.v)
	if err != nil {
		return &configError{err}
	}

	p, err := mpvplayer.NewPlayer(a.logger, rates)
	if err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	if a.v.GetBool("player.mpris") {
		mpp, err := remote.RegisterMprisPlayer(p, a.logger)
		if err != nil {
			a.logger.PrintError("RegisterMprisPlayer", err)
		} else {
			defer mpp.Close()
		}
	}

	ctrl := persist.Activate(ctx, p, store, optionOverrides(a.v),
		persist.WithLogger(a.logger),
		persist.WithKey(a.v.GetString("storage.key")),
	)
	a.logger.Debugf("persist: options %+v, key %q", ctrl.Options(), a.v.GetString("storage.key"))
	p.OnStopped(p.Quit)

	go p.EventLoop()

	if err := p.Play(uris...); err != nil {
		p.Quit()
		<-p.Done()
		return err
	}

	select {
	case <-p.Done():
	case <-ctx.Done():
		a.logger.Print("interrupted, shutting down")
		p.Quit()
		<-p.Done()
	}

	a.logger.Printf("persist: finished in state %s", ctrl.State())
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.PrintError("metrics", err)
		}
	}()
	a.logger.Printf("serving metrics on %s", addr)
	return srv
}
