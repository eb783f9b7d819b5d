// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spezifisch/persistctl/prefs"
	"github.com/spezifisch/persistctl/storage"
)

var errStorageUnavailable = errors.New("storage unavailable")

// openGateway opens the configured store. The caller closes the returned
// store.
func (a *app) openGateway() (storage.Store, *storage.Gateway, error) {
	store, err := storage.Open(storageConfig(a.v))
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return store, storage.NewGateway(store, a.v.GetString("storage.key")), nil
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the remembered player controls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, gw, err := a.openGateway()
			if err != nil {
				return err
			}
			defer store.Close()

			raw, ok, err := gw.Read(cmd.Context())
			if err != nil {
				return fmt.Errorf("read %s: %w", gw.Key(), err)
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no controls remembered under %q\n", gw.Key())
				return nil
			}

			buf, err := json.MarshalIndent(prefs.Decode(raw), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(buf))
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the remembered player controls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, gw, err := a.openGateway()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := gw.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear %s: %w", gw.Key(), err)
			}
			a.logger.Printf("forgot controls under %q", gw.Key())
			return nil
		},
	}
}

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the configured storage is usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := a.v.GetString("storage.backend")
			store, err := storage.Open(storageConfig(a.v))
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unavailable (%v)\n", backend, err)
				return errStorageUnavailable
			}
			defer store.Close()

			if !storage.Probe(contextOf(cmd), store) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unavailable\n", backend)
				return errStorageUnavailable
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", backend)
			return nil
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
