package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexReader reports the size of the loaded term index.
type IndexReader interface {
	Terms() int
}
