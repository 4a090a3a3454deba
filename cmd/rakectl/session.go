package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/rake/pkg/rake"
	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/store"
)

// closeTimeout bounds the final drain of the delivery queue.
const closeTimeout = 30 * time.Second

// session is one command's client together with the resources behind it.
type session struct {
	client   *rake.Client
	registry *rake.Registry
	store    store.Store

	// dryRun is set instead of batch when --dry-run is given.
	dryRun *delivery.MemoryQueue
	batch  *delivery.BatchQueue
}

func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	s := opts.settings
	logger := opts.logger(cmd)

	var st store.Store = store.NewMemoryStore()
	if s.StorePath != "" {
		sqlite, err := store.NewSQLiteStore(s.StorePath)
		if err != nil {
			return nil, err
		}
		st = sqlite
	}

	info := s.Environment()
	if info.DeviceID == "" {
		id, err := env.DeviceID(st)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		info.DeviceID = id
	}

	sess := &session{store: st}

	var queue delivery.Queue
	if opts.DryRun {
		sess.dryRun = delivery.NewMemoryQueue()
		queue = sess.dryRun
	} else {
		qcfg := s.Delivery()
		qcfg.Logger = logger
		stderr := cmd.ErrOrStderr()
		qcfg.OnDrop = func(docs []*event.Document, err error) {
			fmt.Fprintf(stderr, "dropped %d event(s): %v\n", len(docs), err)
		}
		sess.batch = delivery.NewBatchQueue(delivery.NewHTTPSender(nil), qcfg)
		queue = sess.batch
	}

	sess.registry = rake.NewRegistry(
		rake.WithStore(st),
		rake.WithQueue(queue),
		rake.WithEnvironment(env.NewSystem(info)),
		rake.WithLogger(logger),
		rake.WithEndpoints(s.Endpoint, s.DevEndpoint),
	)
	sess.client = sess.registry.GetInstance(opts.Scope, s.Token, s.DevServer)
	return sess, nil
}

// close drains the queue and releases the store.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if s.batch != nil {
		errs = append(errs, s.batch.Close(ctx))
	}
	errs = append(errs, s.registry.Close(ctx), s.store.Close())
	return errors.Join(errs...)
}
