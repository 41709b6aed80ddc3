// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

/*
Package supervisor provides process supervision for ArNScope using suture v4.

The supervisor tree organizes long-running services into three layers so a
failure in one layer does not take down the others:

	RootSupervisor ("arnscope")
	├── LayerData ("data-layer")
	│   └── cache-sweeper
	├── LayerMessaging ("messaging-layer")
	│   ├── websocket-hub
	│   └── event-forwarder
	└── LayerAPI ("api-layer")
	    └── http-server

Crashed services are restarted with suture's backoff policy. Supervisor events
are logged through sutureslog, which is bridged to the zerolog global logger
by logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCacheSweeperService(c, cfg.Cache.SweepInterval))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

See the services subpackage for the service wrappers.
*/
package supervisor
