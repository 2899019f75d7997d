package domain

import (
	"strings"
	"time"
)

// Table is a mongo collection name
type Table string

const (
	TableProperties Table = "properties"
	TableBids       Table = "bids"
	TableUsers      Table = "users"
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

// PropertyId identifies one listing for its whole lifetime
type PropertyId string

func (id PropertyId) String() string {
	return string(id)
}

func (id PropertyId) IsEmpty() bool {
	return len(id) == 0
}

// UserId identifies one account
type UserId string

func (id UserId) String() string {
	return string(id)
}

// Email is stored lowercased so lookups are case insensitive
type Email string

func (e Email) ToLower() Email {
	return Email(strings.ToLower(string(e)))
}

func (e Email) ToLowerStr() string {
	return strings.ToLower(string(e))
}

type TimePeriod string

const (
	TimePeriodDay   TimePeriod = "day"
	TimePeriodWeek  TimePeriod = "week"
	TimePeriodMonth TimePeriod = "month"
	TimePeriodAll   TimePeriod = "all"
)

var timePeriodToDuration = map[TimePeriod]time.Duration{
	TimePeriodDay:   1 * 24 * time.Hour,
	TimePeriodWeek:  7 * 24 * time.Hour,
	TimePeriodMonth: 30 * 24 * time.Hour,
	TimePeriodAll:   time.Duration(1<<63 - 1), // max duration
}

func (tp TimePeriod) ToDuration() time.Duration {
	d, ok := timePeriodToDuration[tp]
	if !ok {
		return timePeriodToDuration[TimePeriodDay]
	}
	return d
}

func (tp TimePeriod) IsValid() bool {
	_, ok := timePeriodToDuration[tp]
	return ok
}
