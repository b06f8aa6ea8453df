package constants

// Context keys
const (
	ContextTokenData = "token_data"
)

// Database defaults
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Redis key prefixes
const (
	RedisKeyEvent = "event:"
)

// Date handling. Occurrence dates are calendar dates, always keyed in UTC.
const (
	DateLayout = "2006-01-02"
)

// Recurrence expansion limits.
// MaxOccurrenceCandidates caps a single expansion call so events without an
// end bound still terminate.
const (
	MaxOccurrenceCandidates = 1000
)

// Per-type query range ceilings, in days.
const (
	MaxRangeDaysDaily   = 365
	MaxRangeDaysWeekly  = 730
	MaxRangeDaysMonthly = 1095
	MaxRangeDaysYearly  = 3650
)

// Default recurrence horizons, in years, applied when a recurring event is
// created or updated without an explicit end date.
const (
	DefaultHorizonYearsDaily   = 1
	DefaultHorizonYearsWeekly  = 2
	DefaultHorizonYearsMonthly = 3
	DefaultHorizonYearsYearly  = 10
)

// Background task types
const (
	TaskTypeEventReminder = "event:reminder"
)

// Family invite codes
const (
	FamilyCodeLength = 6
)
