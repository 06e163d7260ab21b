package database

// SQL schemas for all ClickHouse tables

const (
	// EnvReadingsTableSQL creates the env_readings table, one row per upload
	EnvReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS env_readings (
			timestamp DateTime64(3),
			device_id String,
			temperature Nullable(Float64),
			humidity Nullable(Float64),
			light UInt16,
			alert LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (device_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	insertReadingSQL = `
		INSERT INTO env_readings (timestamp, device_id, temperature, humidity, light, alert)
		VALUES (?, ?, ?, ?, ?, ?)
	`
)

// AllTables returns every table definition in creation order
func AllTables() []string {
	return []string{
		EnvReadingsTableSQL,
	}
}
