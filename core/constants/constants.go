package constants

import "time"

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 5 * time.Second
)

const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Echo context keys.
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Redis key prefixes.
const (
	RedisKeySlot         = "court:slot:"
	RedisKeySlotsByDate  = "court:slots:date:"
	RedisKeySlotsAll     = "court:slots:all"
	RedisKeyTeam         = "court:team:"
	RedisKeyTeamDateLock = "court:lock:team:"
)

// Background task types.
const (
	TaskSlotPromotion = "reservation:promote"
)

const (
	DateLayout      = "2006-01-02"
	DefaultPageSize = 10
	MaxPageSize     = 100
)
