package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./librium.db"

	// DefaultBackupDir is where snapshots are written when BACKUP_DIR is unset
	DefaultBackupDir = "./backups"
)
