package importer

import "time"

const (
	defaultWorkerCount = 8
	defaultBatchSize   = 100

	unitFlushSize   = 10_000
	unitFlushRPS    = 20
	unitFlushPeriod = 30 * time.Second

	pollInterval = 10 * time.Second
	backoffMin   = time.Second
	backoffMax   = time.Minute

	backoffMultiplier = 2
	backoffJitter     = 0.2
)
