package enums

const (
	DATABASE_DRIVER_POSTGRES = "postgres"
	DATABASE_DRIVER_MONGO    = "mongo"
)
