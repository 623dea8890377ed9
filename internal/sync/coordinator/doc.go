// Package coordinator runs the background refresh of extension repository
// metadata.
//
// The coordinator refreshes every stored repository once on start and then on
// every configured interval, with a random jitter so that several instances
// sharing a database do not hit the same remote hosts at the same moment.
//
//	coord := coordinator.New(repoService, cfg, coordinator.WithRefreshMetrics(m))
//	go coord.Start(ctx)
//	// ... run server ...
//	coord.Stop()
//
// A refresh pass never fails as a whole: per-repository failures are logged by
// the service and the next pass runs on the next tick.
package coordinator
