package booking

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc 讓測試可以固定時間
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
