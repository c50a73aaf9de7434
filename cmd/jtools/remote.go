package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jtools/internal/catalog"
	"jtools/internal/config"
	"jtools/internal/favorites"
	"jtools/internal/services"
	"jtools/internal/session"
)

// remote is a validated, tested connection to a Jellyfin server together
// with the session that runs workflows against it.
type remote struct {
	cfg     *config.Config
	conn    config.Connection
	catalog catalog.Catalog
	state   *session.State
	logger  *slog.Logger
	users   []catalog.User
}

// connect validates the connection, tests it, and lists the server's users.
func (c *commandContext) connect(cmd *cobra.Command, flags connectionFlags) (*remote, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	conn, err := c.connection(flags)
	if err != nil {
		return nil, err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return nil, err
	}

	r := &remote{
		cfg:     cfg,
		conn:    conn,
		catalog: newCatalog(cfg, conn, logger),
		logger:  logger,
		state: session.New(session.Options{
			Logger: logger,
			Favorites: favorites.Options{
				ItemDelay: millis(cfg.Import.ItemDelayMS),
			},
		}),
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Connecting to %s...\n", conn.ServerURL)
	result, err := r.run(cmd.Context(), func(ctx context.Context) (string, error) {
		return r.state.StartConnect(ctx, r.catalog)
	}, nil)
	if err != nil {
		return nil, err
	}
	r.users, _ = result.([]catalog.User)
	return r, nil
}

// userID resolves the target user: the --user flag, then the configured
// user, then the first user the server returned.
func (r *remote) userID() (string, error) {
	if r.conn.UserID != "" {
		return r.conn.UserID, nil
	}
	if len(r.users) == 0 {
		return "", services.Wrap(services.ErrNotFound, "cli", "resolve user", "server returned no users; pass --user", nil)
	}
	return r.users[0].ID, nil
}

// userName returns the display name for id, or id itself when unknown.
func (r *remote) userName(id string) string {
	for _, user := range r.users {
		if user.ID == id {
			return user.Name
		}
	}
	return id
}

// run starts a workflow and blocks until its terminal event. Progress events
// are passed to onProgress; the result of a failed run is still returned.
func (r *remote) run(ctx context.Context, start func(context.Context) (string, error), onProgress func(favorites.Progress)) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID, err := start(ctx)
	if err != nil {
		return nil, err
	}
	for event := range r.state.Events() {
		if event.RunID != runID {
			continue
		}
		switch event.Type {
		case session.EventProgress:
			if onProgress != nil && event.Progress != nil {
				onProgress(*event.Progress)
			}
		case session.EventFinished:
			return event.Result, nil
		case session.EventFailed:
			return event.Result, event.Err
		}
	}
	return nil, fmt.Errorf("session closed before the workflow finished")
}
