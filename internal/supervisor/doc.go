// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

The supervisor tree organizes services into three layers for failure isolation:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── SnapshotService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── CachePurgeService
	│   ├── WebSocketHubService
	│   └── SnapshotBroadcastService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted with suture's failure backoff.
The snapshot service returns suture.ErrTerminateSupervisorTree when the
first engine cannot be built, which stops the whole tree.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	tree.AddDataService(snapshotSvc)
	tree.AddMessagingService(purgeSvc)
	tree.AddAPIService(httpSvc)
	err = tree.Serve(ctx)

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog logger.
*/
package supervisor
