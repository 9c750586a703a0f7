package config

// Keys double as environment variable names and config file keys.
const (
	KeyDBDriver   = "DB_DRIVER"
	KeyDBDSN      = "DB_DSN"
	KeyDBHost     = "DB_HOST"
	KeyDBPort     = "DB_PORT"
	KeyDBUser     = "DB_USER"
	KeyDBPassword = "DB_PASSWORD"
	KeyDBName     = "DB_NAME"

	KeyBooksFile    = "BOOKS_FILE"
	KeyUsersFile    = "USERS_FILE"
	KeyRatingsFile  = "RATINGS_FILE"
	KeyCSVEncoding  = "CSV_ENCODING"
	KeyCSVDelimiter = "CSV_DELIMITER"

	KeyMinYear = "MIN_YEAR"
	KeyMaxYear = "MAX_YEAR"
	KeyMinAge  = "MIN_AGE"
	KeyMaxAge  = "MAX_AGE"

	KeyBatchSize = "BATCH_SIZE"
	KeyChunkSize = "CHUNK_SIZE"

	KeyMongoConnString  = "MONGO_CONNECTION_STRING"
	KeyMongoDatabase    = "MONGO_DATABASE"
	KeyReportCollection = "REPORT_COLLECTION"

	KeyLogLevel = "LOG_LEVEL"
	KeyLogFile  = "LOG_FILE"
)

var defaults = map[string]any{
	KeyDBDriver: "mysql",
	KeyDBHost:   "localhost",
	KeyDBUser:   "root",
	KeyDBName:   "book_club",

	KeyBooksFile:   "data/Books.csv",
	KeyUsersFile:   "data/Users.csv",
	KeyRatingsFile: "data/Ratings.csv",

	KeyCSVEncoding:  "ISO-8859-1",
	KeyCSVDelimiter: ";",

	KeyMinYear: 1800,
	KeyMaxYear: 2025,
	KeyMinAge:  6,
	KeyMaxAge:  120,

	KeyBatchSize: 1000,
	KeyChunkSize: 50000,

	KeyMongoDatabase:    "bookclub",
	KeyReportCollection: "load_runs",

	KeyLogLevel: "info",
}
