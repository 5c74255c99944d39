package config

type Export struct {
	SnapshotDir string `env:"EXPORT_SNAPSHOT_DIR" envDefault:"./snapshots"`

	// Asynq queue for snapshot tasks.
	QueueName        string `env:"EXPORT_QUEUE_NAME" envDefault:"export"`
	QueueConcurrency int    `env:"EXPORT_QUEUE_CONCURRENCY" envDefault:"1"`
}
